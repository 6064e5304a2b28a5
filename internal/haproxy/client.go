package haproxy

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"time"

	"github.com/rs/zerolog"
)

const maxResponseSize = 10 * 1024 * 1024 // 10 MB

var errResponseTooLarge = errors.New("response exceeds 10 MB")

// Client talks to an HAProxy stats socket. Each command is sent over its own
// connection; HAProxy closes the connection once the response is written.
type Client struct {
	Network string // "tcp" or "unix"
	Address string
	Timeout time.Duration
	Logger  zerolog.Logger
}

// NewTCPClient creates a client for a stats socket bound to a TCP address.
func NewTCPClient(addr string, timeout time.Duration) *Client {
	return &Client{Network: "tcp", Address: addr, Timeout: timeout, Logger: zerolog.Nop()}
}

// NewUnixClient creates a client for a stats socket bound to a unix path.
func NewUnixClient(path string, timeout time.Duration) *Client {
	return &Client{Network: "unix", Address: path, Timeout: timeout, Logger: zerolog.Nop()}
}

// Send writes cmd and returns everything HAProxy replies until it closes the
// connection.
func (c *Client) Send(ctx context.Context, cmd Command) ([]byte, error) {
	if c.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}

	var d net.Dialer
	conn, err := d.DialContext(ctx, c.Network, c.Address)
	if err != nil {
		return nil, &SendError{Op: OpConnect, Address: c.Address, Err: err}
	}
	defer conn.Close()

	if deadline, ok := ctx.Deadline(); ok {
		if err := conn.SetDeadline(deadline); err != nil {
			return nil, &SendError{Op: OpConnect, Address: c.Address, Err: err}
		}
	}
	// Unblocks pending I/O on cancellation. The connection is closed right
	// after, so a failure here has nothing left to interrupt.
	stop := context.AfterFunc(ctx, func() {
		_ = conn.SetDeadline(time.Unix(1, 0))
	})
	defer stop()

	c.Logger.Debug().Str("network", c.Network).Str("address", c.Address).Stringer("command", cmd).Msg("sending command")

	if _, err := conn.Write(cmd.WireBytes()); err != nil {
		return nil, &SendError{Op: OpWrite, Address: c.Address, Err: err}
	}

	data, err := io.ReadAll(io.LimitReader(conn, maxResponseSize+1))
	if err != nil {
		return nil, &SendError{Op: OpRead, Address: c.Address, Err: err}
	}
	if len(data) > maxResponseSize {
		return nil, &SendError{Op: OpRead, Address: c.Address, Err: errResponseTooLarge}
	}

	c.Logger.Debug().Stringer("command", cmd).Int("bytes", len(data)).Msg("response received")
	return data, nil
}

// ShowEnv queries "show env".
func (c *Client) ShowEnv(ctx context.Context) (EnvironmentVariables, error) {
	data, err := c.Send(ctx, ShowEnv())
	if err != nil {
		return nil, fmt.Errorf("show env: %w", err)
	}
	vars, err := ParseEnv(data)
	if err != nil {
		return nil, fmt.Errorf("show env: %w", err)
	}
	return vars, nil
}

// ShowInfo queries "show info".
func (c *Client) ShowInfo(ctx context.Context) (*Info, error) {
	data, err := c.Send(ctx, ShowInfo())
	if err != nil {
		return nil, fmt.Errorf("show info: %w", err)
	}
	info, err := ParseInfo(data)
	if err != nil {
		return nil, fmt.Errorf("show info: %w", err)
	}
	return info, nil
}

// ShowInfoJSON queries "show info json".
func (c *Client) ShowInfoJSON(ctx context.Context) (*Info, error) {
	data, err := c.Send(ctx, ShowInfoJSON())
	if err != nil {
		return nil, fmt.Errorf("show info json: %w", err)
	}
	info, err := ParseInfoJSON(data)
	if err != nil {
		return nil, fmt.Errorf("show info json: %w", err)
	}
	return info, nil
}

// ShowStat queries "show stat".
func (c *Client) ShowStat(ctx context.Context) ([]Statistic, error) {
	data, err := c.Send(ctx, ShowStat())
	if err != nil {
		return nil, fmt.Errorf("show stat: %w", err)
	}
	stats, err := ParseStatCSV(data)
	if err != nil {
		return nil, fmt.Errorf("show stat: %w", err)
	}
	return stats, nil
}

// ShowStatJSON queries "show stat json".
func (c *Client) ShowStatJSON(ctx context.Context) ([]Statistic, error) {
	data, err := c.Send(ctx, ShowStatJSON())
	if err != nil {
		return nil, fmt.Errorf("show stat json: %w", err)
	}
	stats, err := ParseStatJSON(data)
	if err != nil {
		return nil, fmt.Errorf("show stat json: %w", err)
	}
	return stats, nil
}
