package gamestage

import (
	"testing"

	"gotest.tools/v3/assert"
)

func TestCanOperateOnZeroValue(t *testing.T) {
	atomicStage := NewAtomic()
	gotStage := atomicStage.Load()
	assert.Equal(t, StageIdle, gotStage)

	gotStage = atomicStage.Swap(StageRun)
	assert.Equal(t, StageIdle, gotStage)
}

func TestCanCompareAndSwapOnZeroValue(t *testing.T) {
	atomicStage := NewAtomic()
	ok := atomicStage.CompareAndSwap(StageRun, StageAfterRun)
	assert.Check(t, !ok, "zero value should be StageIdle")

	ok = atomicStage.CompareAndSwap(StageIdle, StageBeforeRun)
	assert.Check(t, ok, "compare and swap should succeed with correct old value")

	assert.Equal(t, StageBeforeRun, atomicStage.Load())
}

func TestOnlyOneCompareAndSwapSuccess(t *testing.T) {
	successCh := make(chan bool)
	atomicStage := NewAtomic()

	for i := 0; i < 10; i++ {
		go func() {
			ok := atomicStage.CompareAndSwap(StageIdle, StageRun)
			successCh <- ok
		}()
	}

	successCount := 0
	failureCount := 0
	for i := 0; i < 10; i++ {
		if <-successCh {
			successCount++
		} else {
			failureCount++
		}
	}
	assert.Equal(t, 1, successCount)
	assert.Equal(t, 9, failureCount)
}

func TestStageNames(t *testing.T) {
	assert.Equal(t, "Idle", StageIdle.String())
	assert.Equal(t, "BeforeRun", StageBeforeRun.String())
	assert.Equal(t, "Run", StageRun.String())
	assert.Equal(t, "AfterRun", StageAfterRun.String())
}
