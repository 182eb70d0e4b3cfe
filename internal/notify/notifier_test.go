package notify

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSender struct {
	name string
	err  error
	sent []string
}

func (f *fakeSender) Send(ctx context.Context, title, message string) error {
	f.sent = append(f.sent, title)
	return f.err
}

func (f *fakeSender) Name() string { return f.name }

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNotifyFansOutToAllSenders(t *testing.T) {
	tg := &fakeSender{name: "telegram"}
	dc := &fakeSender{name: "discord"}
	n := NewNotifier([]Sender{tg, dc}, nil, testLogger())

	err := n.Notify(context.Background(), EventRoundTripStranded, "Round trip stranded", "leg 2 failed")
	require.NoError(t, err)

	assert.Equal(t, []string{"Round trip stranded"}, tg.sent)
	assert.Equal(t, []string{"Round trip stranded"}, dc.sent)
}

func TestNotifyFiltersUnlistedEvents(t *testing.T) {
	tg := &fakeSender{name: "telegram"}
	n := NewNotifier([]Sender{tg}, []string{EventRoundTripStranded}, testLogger())

	require.NoError(t, n.Notify(context.Background(), EventBotStarted, "Bot started", ""))
	require.NoError(t, n.Notify(context.Background(), EventRoundTripStranded, "Round trip stranded", ""))

	assert.Equal(t, []string{"Round trip stranded"}, tg.sent)
}

func TestNotifySenderFailureDoesNotBlockOthers(t *testing.T) {
	tg := &fakeSender{name: "telegram", err: errors.New("telegram: 429")}
	dc := &fakeSender{name: "discord"}
	n := NewNotifier([]Sender{tg, dc}, nil, testLogger())

	err := n.Notify(context.Background(), EventOrderCompleted, "Order completed", "")

	assert.Error(t, err)
	assert.Len(t, dc.sent, 1)
}

func TestNotifyNoSendersIsNoOp(t *testing.T) {
	n := NewNotifier(nil, nil, testLogger())
	assert.NoError(t, n.Notify(context.Background(), EventBotStarted, "Bot started", ""))
}
