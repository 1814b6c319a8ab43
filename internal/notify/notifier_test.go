package notify

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"escape-planner/internal/shared/util"
)

type fakeTarget struct {
	name       string
	configured bool
	code       int
	err        error
	panicWith  any
	delay      time.Duration
	calls      atomic.Int32
}

func (f *fakeTarget) Name() string     { return f.name }
func (f *fakeTarget) Configured() bool { return f.configured }

func (f *fakeTarget) Send(ctx context.Context, lead Lead) (int, error) {
	f.calls.Add(1)
	if f.panicWith != nil {
		panic(f.panicWith)
	}
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return 0, ctx.Err()
		}
	}
	return f.code, f.err
}

func TestNotifyMailingListFailureDoesNotBlockSpreadsheet(t *testing.T) {
	defer goleak.VerifyNone(t)

	mailing := &fakeTarget{name: TargetMailingList, configured: true, code: 500, err: errors.New("unexpected status 500")}
	sheet := &fakeTarget{name: TargetSpreadsheet, configured: true, code: 200}
	attempts := NewMemoryAttemptRepo(10)
	n := &Notifier{Targets: []Target{mailing, sheet}, Attempts: attempts}

	res := n.Notify(context.Background(), testLead())

	assert.Equal(t, int32(1), mailing.calls.Load())
	assert.Equal(t, int32(1), sheet.calls.Load())
	assert.Equal(t, StatusFailed, res.MailingList().Status)
	assert.Equal(t, 500, res.MailingList().StatusCode)
	assert.Equal(t, StatusOK, res.Spreadsheet().Status)

	recorded, err := attempts.ListRecent(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, recorded, 2)
	for _, a := range recorded {
		assert.Equal(t, util.HashContact("nurse@example.com"), a.ContactHash)
		assert.NotContains(t, a.ContactHash, "@")
	}
}

func TestNotifyRecoversFromPanickingTarget(t *testing.T) {
	defer goleak.VerifyNone(t)

	mailing := &fakeTarget{name: TargetMailingList, configured: true, panicWith: "boom"}
	sheet := &fakeTarget{name: TargetSpreadsheet, configured: true, code: 200}
	n := &Notifier{Targets: []Target{mailing, sheet}}

	res := n.Notify(context.Background(), testLead())

	assert.Equal(t, StatusFailed, res.MailingList().Status)
	assert.Contains(t, res.MailingList().Error, "panic: boom")
	assert.Equal(t, StatusOK, res.Spreadsheet().Status)
}

func TestNotifySkipsUnconfiguredTargets(t *testing.T) {
	defer goleak.VerifyNone(t)

	mailing := &fakeTarget{name: TargetMailingList}
	sheet := &fakeTarget{name: TargetSpreadsheet, configured: true, code: 200}
	attempts := NewMemoryAttemptRepo(10)
	n := &Notifier{Targets: []Target{mailing, sheet}, Attempts: attempts}

	res := n.Notify(context.Background(), testLead())

	assert.Equal(t, int32(0), mailing.calls.Load())
	assert.Equal(t, StatusSkipped, res.MailingList().Status)
	recorded, _ := attempts.ListRecent(context.Background(), 10)
	assert.Len(t, recorded, 1)
}

func TestNotifyTimeoutPerTarget(t *testing.T) {
	defer goleak.VerifyNone(t)

	slow := &fakeTarget{name: TargetMailingList, configured: true, delay: time.Second}
	fast := &fakeTarget{name: TargetSpreadsheet, configured: true, code: 200}
	n := &Notifier{Targets: []Target{slow, fast}, Timeout: 20 * time.Millisecond}

	start := time.Now()
	res := n.Notify(context.Background(), testLead())

	assert.Less(t, time.Since(start), 500*time.Millisecond)
	assert.Equal(t, StatusFailed, res.MailingList().Status)
	assert.Equal(t, StatusOK, res.Spreadsheet().Status)
}

func TestNotifyNoTargets(t *testing.T) {
	var n *Notifier
	res := n.Notify(context.Background(), testLead())
	assert.Equal(t, StatusSkipped, res.MailingList().Status)
	assert.Equal(t, StatusSkipped, res.Spreadsheet().Status)
}
