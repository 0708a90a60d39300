// Package speech delivers navigation alerts to a text-to-speech
// collaborator.
//
// A Speaker performs the (slow) act of speaking a single alert. Async wraps
// a Speaker as a navigation.Sink: it accepts an alert only while the
// speaker is idle and drops it otherwise, so the frame loop never waits on
// speech. Two speakers are provided: LogSpeaker writes alerts to the log
// and JSONSpeaker emits them as JSON-RPC 2.0 notifications for an external
// speech process.
package speech

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"github.com/cyclopcam/logs"

	"github.com/ironsheep/sightline/internal/navigation"
)

// Speaker speaks one alert, returning when it has been spoken or ctx is done.
type Speaker interface {
	Speak(ctx context.Context, a navigation.Alert) error
}

// LogSpeaker "speaks" by writing alerts to a log.
type LogSpeaker struct {
	Log logs.Log
}

func (s *LogSpeaker) Speak(ctx context.Context, a navigation.Alert) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.Log.Infof("Speech: [%v %v] %v", a.Priority, a.Zone, a.Message)
	return nil
}

// SayMethod is the JSON-RPC method of speech notifications.
const SayMethod = "speech/say"

// Notification is an outgoing JSON-RPC 2.0 notification (no id).
type Notification struct {
	JSONRPC string      `json:"jsonrpc"`
	Method  string      `json:"method"`
	Params  interface{} `json:"params,omitempty"`
}

// JSONSpeaker writes each alert as one line of JSON-RPC to an io.Writer,
// typically the stdin of a speech process or os.Stdout.
type JSONSpeaker struct {
	mu  sync.Mutex
	enc *json.Encoder
}

// NewJSONSpeaker creates a speaker writing to w.
func NewJSONSpeaker(w io.Writer) *JSONSpeaker {
	return &JSONSpeaker{enc: json.NewEncoder(w)}
}

func (s *JSONSpeaker) Speak(ctx context.Context, a navigation.Alert) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enc.Encode(Notification{JSONRPC: "2.0", Method: SayMethod, Params: a}); err != nil {
		return fmt.Errorf("failed to write speech notification: %w", err)
	}
	return nil
}
