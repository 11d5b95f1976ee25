package logsvc

import (
	"bytes"
	"context"
	"io"
	"log"
	"strings"
	"sync"
	"testing"

	"github.com/pkg/errors"
	"github.com/rollbar/rollbar-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oinstituto/atlas/core/entry"
)

func personOf(t *testing.T, args []interface{}) *rollbar.Person {
	t.Helper()
	for _, arg := range args {
		if ctx, ok := arg.(context.Context); ok {
			p, ok := rollbar.PersonFromContext(ctx)
			require.True(t, ok)
			return p
		}
	}
	return nil
}

func TestRollbarLogger_prepare(t *testing.T) {
	logger := NewDiscardLogger()
	err := errors.New("sendgrid: 401")
	extras := map[string]interface{}{"attempt": 1}

	tests := []struct {
		name       string
		args       []interface{}
		wantArgs   int // without the person context
		wantPerson *rollbar.Person
	}{
		{"no entry", []interface{}{err, extras}, 3, nil},
		{
			"saved entry",
			[]interface{}{entry.Entry{ID: "e1", Name: "Ana", Email: "ana@escola.com"}, err},
			2,
			&rollbar.Person{Id: "e1", Username: "Ana", Email: "ana@escola.com"},
		},
		{
			"unsaved entry",
			[]interface{}{err, entry.Entry{Name: "Ana", Email: "ana@escola.com"}},
			2,
			&rollbar.Person{Id: "ana@escola.com", Username: "Ana", Email: "ana@escola.com"},
		},
		{
			"first entry wins",
			[]interface{}{entry.Entry{ID: "e1", Name: "Ana"}, entry.Entry{ID: "e2", Name: "Bia"}},
			1,
			&rollbar.Person{Id: "e1", Username: "Ana"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := logger.prepare("mailer failed", tt.args)
			assert.Equal(t, "mailer failed", args[0])
			assert.Equal(t, tt.wantPerson, personOf(t, args))
			if tt.wantPerson != nil {
				assert.Len(t, args, tt.wantArgs+1)
			} else {
				assert.Len(t, args, tt.wantArgs)
			}
			for _, arg := range args {
				_, isEntry := arg.(entry.Entry)
				assert.False(t, isEntry)
			}
		})
	}
}

func TestRollbarLogger_Concurrent(t *testing.T) {
	logger := NewDiscardLogger()
	logger.std = log.New(io.Discard, "", 0)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			e := entry.Entry{ID: string(rune('a' + i)), Name: "Ana"}
			logger.Info("pipeline: plan generated", e)
			logger.Warn("watcher: resync")
		}(i)
	}
	wg.Wait()
}

func TestRollbarLogger_print(t *testing.T) {
	out := new(bytes.Buffer)
	logger := NewDiscardLogger()
	logger.std = log.New(out, "TEST : ", 0)

	ana := entry.Entry{ID: "e1", Name: "Ana", Email: "ana@escola.com"}
	logger.Error("mailer failed", ana, errors.New("sendgrid: 401"))
	assert.True(t, strings.HasPrefix(out.String(), "TEST : mailer failed\nTEST : sendgrid: 401\n"), out.String())
	assert.NotContains(t, out.String(), "ana@escola.com")
}
