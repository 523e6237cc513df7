// Package producer reads alarm requests from a line-oriented stream, builds
// Alarm values, and inserts them into the shared queue. It is the single
// writer of the completion signal: when the input stream ends, Done is
// closed and no further alarms will ever be submitted.
package producer

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/tickd/alarmd/internal/alarm"
	"github.com/tickd/alarmd/internal/clock"
	"github.com/tickd/alarmd/internal/ident"
	"github.com/tickd/alarmd/internal/metrics"
	"github.com/tickd/alarmd/internal/report"
)

// Options bundles the producer's collaborators and knobs.
type Options struct {
	// Prompt is written to PromptW before each read. Empty disables it.
	Prompt  string
	PromptW io.Writer

	// MaxMessageLen caps message text; longer input is truncated.
	// Zero means alarm.MaxMessageLen.
	MaxMessageLen int

	// MaxRate limits accepted alarms per second. Zero disables limiting.
	MaxRate int
	Burst   int
}

// Producer parses input lines into alarms and queues them.
type Producer struct {
	queue   *alarm.Queue
	clk     clock.Clock
	rep     report.Reporter
	reg     *metrics.Registry
	opts    Options
	limiter *rate.Limiter

	done     chan struct{}
	doneOnce sync.Once
}

// New creates a Producer submitting to q.
func New(q *alarm.Queue, clk clock.Clock, rep report.Reporter, reg *metrics.Registry, opts Options) *Producer {
	if opts.MaxMessageLen <= 0 {
		opts.MaxMessageLen = alarm.MaxMessageLen
	}

	var limiter *rate.Limiter
	if opts.MaxRate > 0 {
		burst := opts.Burst
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(opts.MaxRate), burst)
	}

	return &Producer{
		queue:   q,
		clk:     clk,
		rep:     rep,
		reg:     reg,
		opts:    opts,
		limiter: limiter,
		done:    make(chan struct{}),
	}
}

// Done returns a channel that is closed when no further alarms will be
// submitted. It is the dispatcher's termination trigger.
func (p *Producer) Done() <-chan struct{} {
	return p.done
}

// Run consumes r until EOF, submitting one alarm per well-formed line.
// Malformed lines are logged and discarded without touching the queue.
// Done is closed before Run returns, whatever the cause.
func (p *Producer) Run(ctx context.Context, r io.Reader) error {
	defer p.signalDone()

	scanner := bufio.NewScanner(r)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		if p.opts.Prompt != "" && p.opts.PromptW != nil {
			fmt.Fprint(p.opts.PromptW, p.opts.Prompt)
		}
		if !scanner.Scan() {
			break
		}

		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}

		delay, msg, err := parseLine(line, p.opts.MaxMessageLen)
		if err != nil {
			slog.Warn("bad command", "line", line, "err", err)
			p.reg.Rejected.Add(1)
			continue
		}

		if p.limiter != nil {
			if err := p.limiter.Wait(ctx); err != nil {
				return err
			}
		}

		p.submit(delay, msg)
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("producer: read input: %w", err)
	}
	return nil
}

// Submit builds and queues one alarm directly, bypassing line parsing.
// Used by tests and by any embedder that already has structured input.
func (p *Producer) Submit(delay time.Duration, message string) *alarm.Alarm {
	return p.submit(delay, message)
}

func (p *Producer) submit(delay time.Duration, message string) *alarm.Alarm {
	now := p.clk.Now()
	a := alarm.New(ident.MustNewID(), delay, message, now)

	p.rep.AlarmAccepted(a, now)
	p.reg.Accepted.Add(1)

	// Insert last: once the alarm is in the queue the producer no longer
	// owns it and must not touch it.
	p.queue.Insert(a)
	return a
}

// signalDone closes the completion channel exactly once.
func (p *Producer) signalDone() {
	p.doneOnce.Do(func() { close(p.done) })
}

// parseLine parses "<positive integer delay> <message>". The delay is in
// seconds; the message is everything after the first whitespace run,
// truncated to maxLen bytes.
func parseLine(line string, maxLen int) (time.Duration, string, error) {
	rest := strings.TrimSpace(line)

	i := strings.IndexAny(rest, " \t")
	if i < 0 {
		return 0, "", fmt.Errorf("missing message")
	}

	secs, err := strconv.Atoi(rest[:i])
	if err != nil {
		return 0, "", fmt.Errorf("invalid delay %q", rest[:i])
	}
	if secs <= 0 {
		return 0, "", fmt.Errorf("delay must be positive, got %d", secs)
	}

	msg := strings.TrimSpace(rest[i+1:])
	if msg == "" {
		return 0, "", fmt.Errorf("missing message")
	}
	if len(msg) > maxLen {
		msg = msg[:maxLen]
	}

	return time.Duration(secs) * time.Second, msg, nil
}
