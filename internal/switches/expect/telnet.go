package expect

import (
	"io"
	"sync"
)

// Telnet protocol bytes
const (
	telnetSE   = 240
	telnetSB   = 250
	telnetWILL = 251
	telnetWONT = 252
	telnetDO   = 253
	telnetDONT = 254
	telnetIAC  = 255
)

type telnetState int

const (
	stateData telnetState = iota
	stateIAC
	stateOption
	stateSub
	stateSubIAC
)

// telnetConn strips telnet negotiation from the stream and refuses every
// option the peer offers or requests, leaving a plain NVT byte stream.
type telnetConn struct {
	conn io.ReadWriteCloser

	mu    sync.Mutex // serialises writes
	state telnetState
	verb  byte
}

// NewTelnetConn wraps a raw telnet connection
func NewTelnetConn(conn io.ReadWriteCloser) io.ReadWriteCloser {
	return &telnetConn{conn: conn}
}

func (t *telnetConn) Read(p []byte) (int, error) {
	for {
		n, err := t.conn.Read(p)
		out := 0
		var replies []byte
		for i := 0; i < n; i++ {
			b := p[i]
			switch t.state {
			case stateData:
				if b == telnetIAC {
					t.state = stateIAC
					continue
				}
				p[out] = b
				out++
			case stateIAC:
				switch b {
				case telnetIAC:
					p[out] = b
					out++
					t.state = stateData
				case telnetWILL, telnetWONT, telnetDO, telnetDONT:
					t.verb = b
					t.state = stateOption
				case telnetSB:
					t.state = stateSub
				default:
					t.state = stateData
				}
			case stateOption:
				switch t.verb {
				case telnetWILL:
					replies = append(replies, telnetIAC, telnetDONT, b)
				case telnetDO:
					replies = append(replies, telnetIAC, telnetWONT, b)
				}
				t.state = stateData
			case stateSub:
				if b == telnetIAC {
					t.state = stateSubIAC
				}
			case stateSubIAC:
				if b == telnetSE {
					t.state = stateData
				} else {
					t.state = stateSub
				}
			}
		}

		if len(replies) > 0 {
			if _, werr := t.write(replies); werr != nil && err == nil {
				err = werr
			}
		}
		// Only negotiation arrived; keep reading rather than return an empty read
		if out > 0 || err != nil {
			return out, err
		}
	}
}

func (t *telnetConn) Write(p []byte) (int, error) {
	escaped := make([]byte, 0, len(p))
	for _, b := range p {
		if b == telnetIAC {
			escaped = append(escaped, telnetIAC)
		}
		escaped = append(escaped, b)
	}
	if _, err := t.write(escaped); err != nil {
		return 0, err
	}
	return len(p), nil
}

func (t *telnetConn) write(p []byte) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.conn.Write(p)
}

func (t *telnetConn) Close() error {
	return t.conn.Close()
}
