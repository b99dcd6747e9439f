package console

import (
	"bufio"
	"io"
)

// Keys is what the dashboard reacts to in one frame.
type Keys struct {
	Quit   bool
	Select int // grid number 1-9, or -1
	Next   bool
	Prev   bool
}

// KeyStream reads bytes in the background and hands them out per frame.
type KeyStream struct {
	ch      chan byte
	pending []byte // unfinished escape sequence from the last Read
}

// StartKeyStream spawns a goroutine reading r until it fails.
func StartKeyStream(r io.Reader) *KeyStream {
	br, ok := r.(*bufio.Reader)
	if !ok {
		br = bufio.NewReader(r)
	}
	s := &KeyStream{ch: make(chan byte, 128)}
	go func() {
		for {
			b, err := br.ReadByte()
			if err != nil {
				close(s.ch)
				return
			}
			s.ch <- b
		}
	}()
	return s
}

// Read drains the pending bytes without blocking. A closed input reads as
// a quit.
func (s *KeyStream) Read() Keys {
	buf := s.pending
	s.pending = nil
	closed := false

drain:
	for {
		select {
		case b, ok := <-s.ch:
			if !ok {
				closed = true
				break drain
			}
			buf = append(buf, b)
		default:
			break drain
		}
	}

	if !closed {
		buf, s.pending = splitPending(buf)
	}
	keys := ParseKeys(buf)
	if closed {
		keys.Quit = true
	}
	return keys
}

// splitPending holds back a trailing ESC or ESC [ whose final byte has not
// arrived yet.
func splitPending(buf []byte) (complete, rest []byte) {
	n := len(buf)
	switch {
	case n >= 1 && buf[n-1] == '\x1b':
		return buf[:n-1], []byte{'\x1b'}
	case n >= 2 && buf[n-2] == '\x1b' && buf[n-1] == '[':
		return buf[:n-2], []byte{'\x1b', '['}
	}
	return buf, nil
}

// ParseKeys decodes raw terminal input. Arrow keys arrive as ESC [ A-D; any
// other escape byte is ignored.
func ParseKeys(buf []byte) Keys {
	keys := Keys{Select: -1}
	for i := 0; i < len(buf); i++ {
		b := buf[i]

		if b == '\x1b' && i+2 < len(buf) && buf[i+1] == '[' {
			switch buf[i+2] {
			case 'A', 'D':
				keys.Prev = true
			case 'B', 'C':
				keys.Next = true
			}
			i += 2
			continue
		}

		switch b {
		case 'q', 'Q', '\x03':
			keys.Quit = true
		case '\t', 'j', 'J':
			keys.Next = true
		case 'k', 'K':
			keys.Prev = true
		case '1', '2', '3', '4', '5', '6', '7', '8', '9':
			keys.Select = int(b - '0')
		}
	}
	return keys
}
