package kvserver

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/yndnr/stackkv-go/internal/core/domain"
)

// DefaultMaxFrameSize is the default maximum command frame length in bytes,
// excluding the line terminator.
const DefaultMaxFrameSize = 1024

// Response status values.
const (
	StatusOK    = "Ok"
	StatusError = "Error"

	// statusClosing acknowledges END.
	statusClosing = "OK"
)

// Response is one JSON reply line.
type Response struct {
	Status string  `json:"status"`
	Mesg   string  `json:"mesg,omitempty"`
	Result *string `json:"result,omitempty"`
}

// OK reports whether the response signals success.
func (r Response) OK() bool {
	return r.Status == StatusOK || r.Status == statusClosing
}

func okResponse(mesg string) Response {
	return Response{Status: StatusOK, Mesg: mesg}
}

func errorResponse(mesg string) Response {
	return Response{Status: StatusError, Mesg: mesg}
}

func resultResponse(v string) Response {
	return Response{Status: StatusOK, Result: &v}
}

// ReadFrame reads one command frame from r.
//
// A frame ends at '\n'; a trailing '\r' is dropped. An unterminated final
// frame at EOF is returned as a normal frame, and the following call
// returns io.EOF. A frame longer than maxLen bytes yields an error
// matching domain.ErrFrameTooLarge; the remainder of that line is consumed
// so the next call starts at the following frame.
func ReadFrame(r *bufio.Reader, maxLen int) (string, error) {
	if maxLen <= 0 {
		maxLen = DefaultMaxFrameSize
	}

	var buf []byte
	for {
		frag, err := r.ReadSlice('\n')
		buf = append(buf, frag...)

		if len(trimEOL(buf)) > maxLen {
			if err == nil || errors.Is(err, io.EOF) {
				return "", frameTooLarge(len(buf), maxLen)
			}
			if errors.Is(err, bufio.ErrBufferFull) {
				if derr := discardLine(r); derr != nil && !errors.Is(derr, io.EOF) {
					return "", derr
				}
				return "", frameTooLarge(len(buf), maxLen)
			}
			return "", err
		}

		switch {
		case err == nil:
			return string(trimEOL(buf)), nil
		case errors.Is(err, bufio.ErrBufferFull):
			continue
		case errors.Is(err, io.EOF) && len(buf) > 0:
			return string(trimEOL(buf)), nil
		default:
			return "", err
		}
	}
}

func frameTooLarge(n, maxLen int) error {
	return domain.ErrFrameTooLarge.WithDetails(fmt.Sprintf("frame of at least %d bytes exceeds limit %d", n, maxLen))
}

// discardLine consumes input up to and including the next '\n'.
func discardLine(r *bufio.Reader) error {
	for {
		_, err := r.ReadSlice('\n')
		if err == nil {
			return nil
		}
		if !errors.Is(err, bufio.ErrBufferFull) {
			return err
		}
	}
}

func trimEOL(b []byte) []byte {
	if n := len(b); n > 0 && b[n-1] == '\n' {
		b = b[:n-1]
	}
	if n := len(b); n > 0 && b[n-1] == '\r' {
		b = b[:n-1]
	}
	return b
}

// WriteResponse writes resp as a single JSON line. The caller flushes w.
func WriteResponse(w *bufio.Writer, resp Response) error {
	b, err := json.Marshal(resp)
	if err != nil {
		return fmt.Errorf("encode response: %w", err)
	}
	if _, err := w.Write(b); err != nil {
		return err
	}
	return w.WriteByte('\n')
}

// DecodeResponse parses one JSON response line.
func DecodeResponse(line []byte) (Response, error) {
	var resp Response
	if err := json.Unmarshal(line, &resp); err != nil {
		return Response{}, fmt.Errorf("decode response: %w", err)
	}
	return resp, nil
}
