// Package oxidbtest runs an in-process stand-in for oxidb-server that speaks
// the same length-prefixed JSON protocol. It implements only the commands the
// oxidb client exposes, with a small subset of the query language ($and,
// $regex, $gt, $gte, $lt, $lte and equality).
package oxidbtest

import (
	"encoding/binary"
	"encoding/json"
	"io"
	"net"
	"reflect"
	"regexp"
	"sort"
	"strings"
	"sync"
	"testing"
)

type Server struct {
	ln net.Listener
	wg sync.WaitGroup

	mu          sync.Mutex
	conns       map[net.Conn]struct{}
	collections map[string][]map[string]any
	indexes     map[string][]string
	failures    map[string]string
	nextID      int
}

// Start listens on a random loopback port and stops the server when the test
// ends.
func Start(t testing.TB) *Server {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("oxidbtest: listen: %v", err)
	}
	s := &Server{
		ln:          ln,
		conns:       make(map[net.Conn]struct{}),
		collections: make(map[string][]map[string]any),
		indexes:     make(map[string][]string),
		failures:    make(map[string]string),
	}
	s.wg.Add(1)
	go s.serve()
	t.Cleanup(s.Close)
	return s
}

func (s *Server) Host() string {
	return s.ln.Addr().(*net.TCPAddr).IP.String()
}

func (s *Server) Port() int {
	return s.ln.Addr().(*net.TCPAddr).Port
}

// Fail makes every following request for cmd answer with an error message.
func (s *Server) Fail(cmd, msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[cmd] = msg
}

// Docs returns a snapshot of the documents stored in collection.
func (s *Server) Docs(collection string) []map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]map[string]any(nil), s.collections[collection]...)
}

// Indexes returns the fields indexed on collection, in creation order.
func (s *Server) Indexes(collection string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.indexes[collection]...)
}

// Close stops accepting, drops open connections and waits for handlers.
func (s *Server) Close() {
	s.ln.Close()
	s.mu.Lock()
	for c := range s.conns {
		c.Close()
	}
	s.mu.Unlock()
	s.wg.Wait()
}

func (s *Server) serve() {
	defer s.wg.Done()
	for {
		conn, err := s.ln.Accept()
		if err != nil {
			return
		}
		s.mu.Lock()
		s.conns[conn] = struct{}{}
		s.mu.Unlock()
		s.wg.Add(1)
		go s.handle(conn)
	}
}

func (s *Server) handle(conn net.Conn) {
	defer s.wg.Done()
	defer func() {
		s.mu.Lock()
		delete(s.conns, conn)
		s.mu.Unlock()
		conn.Close()
	}()
	for {
		lenBuf := make([]byte, 4)
		if _, err := io.ReadFull(conn, lenBuf); err != nil {
			return
		}
		payload := make([]byte, binary.LittleEndian.Uint32(lenBuf))
		if _, err := io.ReadFull(conn, payload); err != nil {
			return
		}
		var req map[string]any
		resp := map[string]any{"ok": false, "error": "invalid json"}
		if err := json.Unmarshal(payload, &req); err == nil {
			resp = s.dispatch(req)
		}
		out, _ := json.Marshal(resp)
		frame := make([]byte, 4+len(out))
		binary.LittleEndian.PutUint32(frame, uint32(len(out)))
		copy(frame[4:], out)
		if _, err := conn.Write(frame); err != nil {
			return
		}
	}
}

func (s *Server) dispatch(req map[string]any) map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()

	cmd, _ := req["cmd"].(string)
	if msg, ok := s.failures[cmd]; ok {
		return map[string]any{"ok": false, "error": msg}
	}
	coll, _ := req["collection"].(string)
	query, _ := req["query"].(map[string]any)

	switch cmd {
	case "ping":
		return ok("pong")
	case "insert":
		doc, _ := req["doc"].(map[string]any)
		s.nextID++
		stored := make(map[string]any, len(doc)+1)
		for k, v := range doc {
			stored[k] = v
		}
		stored["_id"] = float64(s.nextID)
		s.collections[coll] = append(s.collections[coll], stored)
		return ok(map[string]any{"id": float64(s.nextID)})
	case "find":
		docs := s.match(coll, query)
		sortDocs(docs, req["sort"])
		if skip, ok := req["skip"].(float64); ok {
			docs = docs[min(int(skip), len(docs)):]
		}
		if limit, ok := req["limit"].(float64); ok {
			docs = docs[:min(int(limit), len(docs))]
		}
		out := make([]any, len(docs))
		for i, d := range docs {
			out[i] = d
		}
		return ok(out)
	case "find_one":
		docs := s.match(coll, query)
		if len(docs) == 0 {
			return ok(nil)
		}
		return ok(docs[0])
	case "count":
		return ok(map[string]any{"count": float64(len(s.match(coll, query)))})
	case "create_index", "create_unique_index":
		field, _ := req["field"].(string)
		s.indexes[coll] = append(s.indexes[coll], field)
		return ok("ok")
	}
	return map[string]any{"ok": false, "error": "unknown command: " + cmd}
}

func ok(data any) map[string]any {
	return map[string]any{"ok": true, "data": data}
}

func (s *Server) match(coll string, query map[string]any) []map[string]any {
	var out []map[string]any
	for _, doc := range s.collections[coll] {
		if matches(doc, query) {
			out = append(out, doc)
		}
	}
	return out
}

func matches(doc, query map[string]any) bool {
	for key, cond := range query {
		if key == "$and" {
			subs, _ := cond.([]any)
			for _, sub := range subs {
				q, _ := sub.(map[string]any)
				if !matches(doc, q) {
					return false
				}
			}
			continue
		}
		if !matchValue(lookup(doc, key), cond) {
			return false
		}
	}
	return true
}

func matchValue(v, cond any) bool {
	ops, isOps := cond.(map[string]any)
	if !isOps {
		return reflect.DeepEqual(v, cond)
	}
	for op, arg := range ops {
		switch op {
		case "$regex":
			s, _ := v.(string)
			pattern, _ := arg.(string)
			re, err := regexp.Compile(pattern)
			if err != nil || !re.MatchString(s) {
				return false
			}
		case "$gt":
			if compare(v, arg) <= 0 {
				return false
			}
		case "$gte":
			if compare(v, arg) < 0 {
				return false
			}
		case "$lt":
			if compare(v, arg) >= 0 {
				return false
			}
		case "$lte":
			if compare(v, arg) > 0 {
				return false
			}
		default:
			return false
		}
	}
	return true
}

func lookup(doc map[string]any, path string) any {
	var cur any = doc
	for _, part := range strings.Split(path, ".") {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil
		}
		cur = m[part]
	}
	return cur
}

func compare(a, b any) int {
	switch x := a.(type) {
	case string:
		y, _ := b.(string)
		return strings.Compare(x, y)
	case float64:
		y, _ := b.(float64)
		switch {
		case x < y:
			return -1
		case x > y:
			return 1
		}
	}
	return 0
}

func sortDocs(docs []map[string]any, order any) {
	m, _ := order.(map[string]any)
	for field, dir := range m {
		desc := false
		if d, ok := dir.(float64); ok && d < 0 {
			desc = true
		}
		sort.SliceStable(docs, func(i, j int) bool {
			c := compare(lookup(docs[i], field), lookup(docs[j], field))
			if desc {
				return c > 0
			}
			return c < 0
		})
	}
}
