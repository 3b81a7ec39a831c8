package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"unicode/utf8"

	"go.opentelemetry.io/otel/trace"

	"askmygarmin/internal/domain"
	"askmygarmin/internal/infra/tracer"
	"askmygarmin/internal/sentinel"
)

// AskParams is the input for one streamed turn.
type AskParams struct {
	Question string
	History  []domain.Message
	Mode     string
}

type askRequest struct {
	Question     string        `json:"question"`
	History      []wireMessage `json:"history"`
	SessionToken string        `json:"session_token,omitempty"`
	ModeFlag     string        `json:"mode_flag,omitempty"`
}

// wireMessage is the history entry shape the backend expects.
type wireMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// streamReadSize is the read buffer for the response body. Chunk boundaries
// are arbitrary; nothing downstream may depend on them.
const streamReadSize = 4096

// Ask runs one question-and-streamed-answer exchange.
//
// onUpdate receives the full sentinel-stripped display text after every
// append, a wholesale replacement rather than a diff, so re-rendering stays
// idempotent. The returned TurnResult is the turn's terminal state; transport
// and HTTP failures are folded into it rather than returned as errors. The
// only error return is the single-flight refusal while a previous turn is
// still streaming.
func (c *Client) Ask(ctx context.Context, p AskParams, onUpdate func(display string)) (*domain.TurnResult, error) {
	if !c.inFlight.CompareAndSwap(false, true) {
		return nil, domain.NewDomainError("Client.Ask", domain.ErrTurnInFlight, "")
	}
	defer c.inFlight.Store(false)

	ctx, span := tracer.StartSpan(ctx, "ask.stream",
		trace.WithAttributes(tracer.StringAttr("ask.mode", p.Mode)),
	)
	defer span.End()

	// Refuse before any network call when the caller is not authenticated;
	// the question is carried so it can be replayed after login.
	if !c.authenticated.Load() {
		tracer.RecordError(span, domain.ErrNotAuthenticated)
		return &domain.TurnResult{Outcome: domain.TurnAuthRequired, Question: p.Question}, nil
	}

	resp, result := c.openStream(ctx, p)
	if result != nil {
		tracer.RecordError(span, fmt.Errorf("ask stream: %s", result.Outcome))
		return result, nil
	}
	defer resp.Body.Close()

	result = c.consumeStream(resp.Body, p.Question, onUpdate)
	if result.Outcome == domain.TurnCompleted {
		tracer.SetOK(span)
		c.logger.Debug("turn completed",
			"chars", len(result.Content),
			"memory_stored", result.Memory != nil,
		)
	} else {
		tracer.RecordError(span, result.Err)
	}
	return result, nil
}

// openStream issues the request and classifies the response status. A nil
// TurnResult means the stream is open and resp is ready to read.
func (c *Client) openStream(ctx context.Context, p AskParams) (*http.Response, *domain.TurnResult) {
	history := make([]wireMessage, 0, len(p.History))
	for _, m := range p.History {
		history = append(history, wireMessage{Role: m.Role, Content: m.Content})
	}

	data, err := json.Marshal(askRequest{
		Question:     p.Question,
		History:      history,
		SessionToken: c.tokens.Token(),
		ModeFlag:     p.Mode,
	})
	if err != nil {
		return nil, erroredResult(p.Question, fmt.Errorf("marshal request: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/ask", bytes.NewReader(data))
	if err != nil {
		return nil, erroredResult(p.Question, fmt.Errorf("create request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")
	c.setSessionToken(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, erroredResult(p.Question, err)
	}

	// Rotation applies as soon as headers arrive, even if the body is never
	// readable: the next request must already carry the replacement token.
	c.applyRotation(resp)

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		io.Copy(io.Discard, io.LimitReader(resp.Body, maxErrorBody))
		resp.Body.Close()
		c.authenticated.Store(false)
		c.logger.Info("session expired mid-conversation", "question_len", len(p.Question))
		return nil, &domain.TurnResult{
			Outcome:  domain.TurnSessionExpired,
			Question: p.Question,
			Err:      domain.ErrSessionExpired,
		}

	case resp.StatusCode != http.StatusOK:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		resp.Body.Close()
		msg := errorDetail(resp.StatusCode, body)
		return nil, erroredResult(p.Question, fmt.Errorf("%w: %s", domain.ErrBackend, msg))
	}

	return resp, nil
}

// consumeStream reads the body chunk by chunk until end of stream, appending
// decoded text to the accumulated turn text. Partial multi-byte characters
// spanning chunk boundaries are buffered, never corrupted or dropped. After
// every append the full pipeline downstream of the sentinel extractor is
// re-run on the cumulative text via onUpdate.
func (c *Client) consumeStream(body io.Reader, question string, onUpdate func(string)) *domain.TurnResult {
	var acc strings.Builder
	var pending []byte
	buf := make([]byte, streamReadSize)

	for {
		n, err := body.Read(buf)
		if n > 0 {
			pending = append(pending, buf[:n]...)
			complete, rest := splitCompleteUTF8(pending)
			if len(complete) > 0 {
				acc.Write(complete)
				if onUpdate != nil {
					display, _ := sentinel.Extract(acc.String())
					onUpdate(display)
				}
			}
			pending = append(pending[:0], rest...)
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			// A dropped connection is terminal for the in-flight turn, not a
			// retryable transport state.
			return erroredResult(question, fmt.Errorf("read stream: %w", err))
		}
	}
	// Flush any trailing bytes; an invalid tail decodes to replacement runes.
	acc.Write(pending)

	display, ev := sentinel.Extract(acc.String())
	return &domain.TurnResult{
		Outcome: domain.TurnCompleted,
		Content: display,
		Memory:  ev,
	}
}

// erroredResult wraps a failure as the synthetic "Error: ..." assistant
// message kept in the transcript. The transcript is not rolled back for
// these: the user's question stays visible.
func erroredResult(question string, err error) *domain.TurnResult {
	return &domain.TurnResult{
		Outcome:  domain.TurnErrored,
		Content:  "Error: " + err.Error(),
		Question: question,
		Err:      err,
	}
}

// splitCompleteUTF8 splits b into the longest prefix of whole UTF-8 sequences
// and a possibly-incomplete trailing sequence to carry into the next read.
func splitCompleteUTF8(b []byte) (complete, rest []byte) {
	n := len(b)
	for i := 1; i <= utf8.UTFMax && i <= n; i++ {
		c := b[n-i]
		if c < 0x80 {
			// ASCII tail byte: everything is complete.
			return b, nil
		}
		if c >= 0xC0 {
			// Lead byte found i bytes from the end.
			if runeLen(c) > i {
				return b[:n-i], b[n-i:]
			}
			return b, nil
		}
		// Continuation byte, keep walking back.
	}
	return b, nil
}

// runeLen returns the encoded length implied by a UTF-8 lead byte.
func runeLen(c byte) int {
	switch {
	case c >= 0xF0:
		return 4
	case c >= 0xE0:
		return 3
	case c >= 0xC0:
		return 2
	default:
		return 1
	}
}
