// Package riva calls NVIDIA Riva offline speech recognition over gRPC.
package riva

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rbright/lma/internal/fault"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/connectivity"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/types/dynamicpb"
)

// SampleRate is the PCM rate lma captures and Riva is told to expect.
const SampleRate = 16000

// SpeechPhrase is one vocabulary boost phrase in request-ready form.
type SpeechPhrase struct {
	Phrase string
	Boost  float32
}

// Config controls connection and recognition behavior.
type Config struct {
	Endpoint             string
	LanguageCode         string
	Model                string
	AutomaticPunctuation bool
	SpeechPhrases        []SpeechPhrase
	DialTimeout          time.Duration
	DialOptions          []grpc.DialOption
}

// Client owns one gRPC connection to a Riva server.
type Client struct {
	conn *grpc.ClientConn
	cfg  Config
}

// Dial connects to Riva and waits until the channel is ready.
func Dial(ctx context.Context, cfg Config) (*Client, error) {
	endpoint := strings.TrimSpace(cfg.Endpoint)
	if endpoint == "" {
		return nil, errors.New("riva endpoint is empty")
	}
	if cfg.DialTimeout <= 0 {
		cfg.DialTimeout = 3 * time.Second
	}
	if strings.TrimSpace(cfg.LanguageCode) == "" {
		cfg.LanguageCode = "en-US"
	}

	opts := append([]grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())}, cfg.DialOptions...)
	conn, err := grpc.NewClient(endpoint, opts...)
	if err != nil {
		return nil, fmt.Errorf("dial riva grpc %q: %w", endpoint, err)
	}

	readyCtx, cancel := context.WithTimeout(ctx, cfg.DialTimeout)
	defer cancel()
	conn.Connect()
	if err := awaitReady(readyCtx, conn); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("wait for riva grpc readiness: %w: %w", fault.ErrBackendUnavailable, err)
	}

	return &Client{conn: conn, cfg: cfg}, nil
}

// Recognize transcribes one complete 16 kHz mono s16le recording.
// It returns one whitespace-normalized segment per non-empty result.
func (c *Client) Recognize(ctx context.Context, pcm []byte) ([]string, error) {
	if len(pcm) == 0 {
		return nil, errors.New("no audio captured")
	}

	req := c.buildRequest(pcm)
	resp := dynamicpb.NewMessage(recognizeResponseDesc)
	if err := c.conn.Invoke(ctx, recognizeMethod, req, resp); err != nil {
		return nil, classifyRPCError(err)
	}
	return segmentsFromResponse(resp), nil
}

// Close releases the connection.
func (c *Client) Close() error {
	return c.conn.Close()
}

func (c *Client) buildRequest(pcm []byte) *dynamicpb.Message {
	req := dynamicpb.NewMessage(recognizeRequestDesc)
	reqFields := recognizeRequestDesc.Fields()

	cfgField := reqFields.ByName("config")
	recCfg := dynamicpb.NewMessage(cfgField.Message())
	cfgFields := cfgField.Message().Fields()
	recCfg.Set(cfgFields.ByName("encoding"), protoreflect.ValueOfInt32(linearPCM))
	recCfg.Set(cfgFields.ByName("sample_rate_hertz"), protoreflect.ValueOfInt32(SampleRate))
	recCfg.Set(cfgFields.ByName("language_code"), protoreflect.ValueOfString(c.cfg.LanguageCode))
	recCfg.Set(cfgFields.ByName("max_alternatives"), protoreflect.ValueOfInt32(1))
	recCfg.Set(cfgFields.ByName("audio_channel_count"), protoreflect.ValueOfInt32(1))
	recCfg.Set(cfgFields.ByName("enable_automatic_punctuation"), protoreflect.ValueOfBool(c.cfg.AutomaticPunctuation))
	if model := strings.TrimSpace(c.cfg.Model); model != "" {
		recCfg.Set(cfgFields.ByName("model"), protoreflect.ValueOfString(model))
	}

	contextsField := cfgFields.ByName("speech_contexts")
	contexts := recCfg.Mutable(contextsField).List()
	for _, phrase := range c.cfg.SpeechPhrases {
		text := strings.TrimSpace(phrase.Phrase)
		if text == "" {
			continue
		}
		sc := dynamicpb.NewMessage(contextsField.Message())
		scFields := contextsField.Message().Fields()
		sc.Mutable(scFields.ByName("phrases")).List().Append(protoreflect.ValueOfString(text))
		sc.Set(scFields.ByName("boost"), protoreflect.ValueOfFloat32(phrase.Boost))
		contexts.Append(protoreflect.ValueOfMessage(sc))
	}

	req.Set(cfgField, protoreflect.ValueOfMessage(recCfg))
	req.Set(reqFields.ByName("audio"), protoreflect.ValueOfBytes(pcm))
	return req
}

func segmentsFromResponse(resp protoreflect.Message) []string {
	resultsField := recognizeResponseDesc.Fields().ByName("results")
	resultDesc := resultsField.Message()
	altField := resultDesc.Fields().ByName("alternatives")
	transcriptField := altField.Message().Fields().ByName("transcript")

	var segments []string
	results := resp.Get(resultsField).List()
	for i := range results.Len() {
		alternatives := results.Get(i).Message().Get(altField).List()
		if alternatives.Len() == 0 {
			continue
		}
		text := strings.Join(strings.Fields(alternatives.Get(0).Message().Get(transcriptField).String()), " ")
		if text == "" {
			continue
		}
		// Riva repeats the final hypothesis when endpointing splits trailing silence.
		if n := len(segments); n > 0 && segments[n-1] == text {
			continue
		}
		segments = append(segments, text)
	}
	return segments
}

// awaitReady blocks until conn is Ready. A TransientFailure ends the wait
// early so a stopped server is reported without burning the dial timeout.
func awaitReady(ctx context.Context, conn *grpc.ClientConn) error {
	for state := conn.GetState(); state != connectivity.Ready; state = conn.GetState() {
		switch state {
		case connectivity.TransientFailure:
			return errors.New("channel in transient failure")
		case connectivity.Shutdown:
			return errors.New("channel shut down")
		}
		if !conn.WaitForStateChange(ctx, state) {
			return fmt.Errorf("still %s: %w", strings.ToLower(state.String()), ctx.Err())
		}
	}
	return nil
}

func classifyRPCError(err error) error {
	switch status.Code(err) {
	case codes.Unavailable:
		return fmt.Errorf("riva recognize: %w: %w", fault.ErrBackendUnavailable, err)
	case codes.DeadlineExceeded:
		return fmt.Errorf("riva recognize: %w: %w", fault.ErrTimeout, err)
	default:
		return fmt.Errorf("riva recognize: %w", err)
	}
}
