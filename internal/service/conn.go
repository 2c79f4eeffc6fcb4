package service

import "sync"

// Conn is the part of a websocket connection a session writes to.
type Conn interface {
	WriteJSON(v any) error
	WriteMessage(messageType int, data []byte) error
	Close() error
}

// SyncConn serializes writes to a Conn. A websocket connection allows at
// most one concurrent writer.
type SyncConn struct {
	mu   sync.Mutex
	conn Conn
}

// NewSyncConn wraps conn. A conn that is already a *SyncConn is returned
// as is.
func NewSyncConn(conn Conn) *SyncConn {
	if sc, ok := conn.(*SyncConn); ok {
		return sc
	}
	return &SyncConn{conn: conn}
}

func (c *SyncConn) WriteJSON(v any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteJSON(v)
}

func (c *SyncConn) WriteMessage(messageType int, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteMessage(messageType, data)
}

func (c *SyncConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.Close()
}

// wraps reports whether c is conn or was built around it.
func (c *SyncConn) wraps(conn Conn) bool {
	return c == conn || c.conn == conn
}
