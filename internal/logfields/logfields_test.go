package logfields

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAttrs(t *testing.T) {
	assert.Equal(t, "error", Error(errors.New("boom")).Key)
	assert.Equal(t, "boom", Error(errors.New("boom")).Value.String())
	assert.Equal(t, "", Error(nil).Value.String())
	assert.Equal(t, int64(90), Duration(90*time.Second).Value.Int64())
	assert.Equal(t, KeySessionType, SessionType("pomodoro").Key)
}
