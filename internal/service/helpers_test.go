package service

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
)

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

type erpCall struct {
	Method   string
	Endpoint string
	Body     any
}

// fakeERP records every call and answers through a pluggable handler.
type fakeERP struct {
	mu      sync.Mutex
	calls   []erpCall
	handler func(method, endpoint string, body any) ([]byte, error)
}

func (f *fakeERP) record(method, endpoint string, body any) ([]byte, error) {
	f.mu.Lock()
	f.calls = append(f.calls, erpCall{Method: method, Endpoint: endpoint, Body: body})
	f.mu.Unlock()
	if f.handler == nil {
		return emptyEnvelope(), nil
	}
	return f.handler(method, endpoint, body)
}

func (f *fakeERP) Get(_ context.Context, endpoint string) ([]byte, error) {
	return f.record("GET", endpoint, nil)
}

func (f *fakeERP) Post(_ context.Context, endpoint string, body any) ([]byte, error) {
	return f.record("POST", endpoint, body)
}

func (f *fakeERP) Put(_ context.Context, endpoint string, body any) ([]byte, error) {
	return f.record("PUT", endpoint, body)
}

func (f *fakeERP) Delete(_ context.Context, endpoint string) ([]byte, error) {
	return f.record("DELETE", endpoint, nil)
}

func (f *fakeERP) callsTo(method, endpointPrefix string) []erpCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []erpCall
	for _, c := range f.calls {
		if c.Method == method && strings.HasPrefix(c.Endpoint, endpointPrefix) {
			out = append(out, c)
		}
	}
	return out
}

func emptyEnvelope() []byte {
	return []byte(`{"response":{"ResultData":[]}}`)
}

// envelopeWithRows builds a response carrying one table of rows, each row
// given as a JSON object literal.
func envelopeWithRows(table string, rows ...string) []byte {
	return []byte(fmt.Sprintf(
		`{"response":{"ResultData":[{"%s":[%s]}]}}`,
		table, strings.Join(rows, ","),
	))
}

// recordSink counts progress signals for assertions.
type recordSink struct {
	mu              sync.Mutex
	progress        []string
	injectionErrors int
	businessErrors  int
	duplicates      int
}

func (s *recordSink) OnProgress(message string) {
	s.mu.Lock()
	s.progress = append(s.progress, message)
	s.mu.Unlock()
}

func (s *recordSink) OnInjectionError() {
	s.mu.Lock()
	s.injectionErrors++
	s.mu.Unlock()
}

func (s *recordSink) OnBusinessError(source, detail string) {
	s.mu.Lock()
	s.businessErrors++
	s.mu.Unlock()
}

func (s *recordSink) OnDuplicate(count int) {
	s.mu.Lock()
	s.duplicates += count
	s.mu.Unlock()
}
