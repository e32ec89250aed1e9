package slim

import (
	"context"
	"fmt"
	"io"
	"net"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/temoc-project/temoc/internal/domain"
)

// Connector spawns a SUT process and returns a live Slim Connection to
// it. Two strategies exist, both grounded on original_source's
// TcpSlimServerConnector / StdoutSlimServerConnector: TCPConnector
// dials a socket the SUT binds; StdioConnector speaks Slim directly
// over the child's stdin/stdout pipes for SUTs that never bind a
// socket at all.
type Connector interface {
	Connect(ctx context.Context) (*Connection, *exec.Cmd, error)
}

// TCPConnector spawns `command` with %p replaced by port, then dials
// 127.0.0.1:port with linear backoff until deadline elapses.
type TCPConnector struct {
	Command    string
	Port       int
	Deadline   time.Duration
	PipeOutput bool
}

func (c TCPConnector) Connect(ctx context.Context) (*Connection, *exec.Cmd, error) {
	resolved := strings.ReplaceAll(c.Command, "%p", fmt.Sprintf("%d", c.Port))
	cmd := exec.CommandContext(ctx, "sh", "-c", resolved)
	configureStdio(cmd, c.PipeOutput)
	if err := cmd.Start(); err != nil {
		return nil, nil, domain.NewError(domain.KindSpawn, "spawn", "", 0, "failed starting SUT process", err)
	}

	deadline := c.Deadline
	if deadline <= 0 {
		deadline = 5 * time.Second
	}
	conn, err := dialWithBackoff(ctx, c.Port, deadline)
	if err != nil {
		_ = cmd.Process.Kill()
		return nil, nil, err
	}

	slimConn, err := Handshake(conn, conn, conn)
	if err != nil {
		_ = conn.Close()
		_ = cmd.Process.Kill()
		return nil, nil, err
	}
	return slimConn, cmd, nil
}

// Shutdown says goodbye, closes the transport, and waits for the SUT
// process to exit, force-killing it if it doesn't within timeout.
func Shutdown(conn *Connection, cmd *exec.Cmd, timeout time.Duration) error {
	_ = conn.Bye()
	_ = conn.Close()

	done := make(chan error, 1)
	go func() { done <- cmd.Wait() }()

	select {
	case err := <-done:
		return err
	case <-time.After(timeout):
		_ = cmd.Process.Kill()
		<-done
		return domain.NewError(domain.KindSpawnTimeout, "shutdown", "", 0, "SUT did not exit before timeout", nil)
	}
}

func dialWithBackoff(ctx context.Context, port int, deadline time.Duration) (net.Conn, error) {
	addr := fmt.Sprintf("127.0.0.1:%d", port)
	start := time.Now()
	backoff := 100 * time.Millisecond
	for {
		var d net.Dialer
		conn, err := d.DialContext(ctx, "tcp", addr)
		if err == nil {
			return conn, nil
		}
		if time.Since(start) > deadline {
			return nil, domain.NewError(domain.KindSpawnTimeout, "spawn", "", 0,
				"timed out connecting to Slim server at "+addr, err)
		}
		select {
		case <-ctx.Done():
			return nil, domain.NewError(domain.KindSpawnTimeout, "spawn", "", 0, "cancelled while connecting", ctx.Err())
		case <-time.After(backoff):
		}
	}
}

func configureStdio(cmd *exec.Cmd, pipeOutput bool) {
	if pipeOutput {
		cmd.Stdout = os.Stdout
		cmd.Stderr = os.Stderr
		return
	}
	cmd.Stdout = nil
	cmd.Stderr = nil
}

// StdioConnector speaks Slim over the child process's stdin/stdout,
// selected when the configured port is 0 (the original's `port == 1`
// sentinel doesn't translate cleanly since 1 is a valid TCP port in
// Go's dialer; 0 is never a bindable port and reads naturally as
// "no socket").
type StdioConnector struct {
	Command    string
	PipeOutput bool
}

type stdioCloser struct {
	stdin  io.WriteCloser
	stdout io.ReadCloser
	cmd    *exec.Cmd
}

func (s *stdioCloser) Close() error {
	_ = s.stdin.Close()
	return s.stdout.Close()
}

func (c StdioConnector) Connect(ctx context.Context) (*Connection, *exec.Cmd, error) {
	cmd := exec.CommandContext(ctx, "sh", "-c", c.Command)
	if c.PipeOutput {
		cmd.Stderr = os.Stderr
	}
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, nil, domain.NewError(domain.KindSpawn, "spawn", "", 0, "failed opening SUT stdin", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, nil, domain.NewError(domain.KindSpawn, "spawn", "", 0, "failed opening SUT stdout", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, nil, domain.NewError(domain.KindSpawn, "spawn", "", 0, "failed starting SUT process", err)
	}

	closer := &stdioCloser{stdin: stdin, stdout: stdout, cmd: cmd}
	slimConn, err := Handshake(stdout, stdin, closer)
	if err != nil {
		_ = closer.Close()
		_ = cmd.Process.Kill()
		return nil, nil, err
	}
	return slimConn, cmd, nil
}
