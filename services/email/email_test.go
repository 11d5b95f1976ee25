package emailsvc

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"net/mail"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oinstituto/atlas/core"
	"github.com/oinstituto/atlas/testutil"
)

func message() *core.EmailMessage {
	return &core.EmailMessage{
		To:          []mail.Address{{Name: "Ana", Address: "ana@escola.com"}},
		Subject:     "Oi",
		TextContent: "Plano em texto",
		HTMLContent: "<p>Plano</p>",
	}
}

func TestConsoleService_Send(t *testing.T) {
	conf := testutil.NewConfig()
	out := new(bytes.Buffer)
	svc := NewConsoleService(log.New(out, "", 0), conf)

	require.NoError(t, svc.Send(context.Background(), message()))
	printed := out.String()
	assert.Contains(t, printed, "Subject: [Atlas] Oi\r\n")
	assert.Contains(t, printed, `To: "Ana" <ana@escola.com>`)
	assert.Contains(t, printed, "Content-Type: text/plain; charset=utf-8")
	assert.Contains(t, printed, "<p>Plano</p>")

	tests := []struct {
		name    string
		msg     *core.EmailMessage
		wantErr error
	}{
		{"no recipients", &core.EmailMessage{TextContent: "x"}, core.ErrNoRecipients},
		{"no content", &core.EmailMessage{To: []mail.Address{{Address: "a@b.c"}}}, core.ErrNoContent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, svc.Send(context.Background(), tt.msg), tt.wantErr)
		})
	}
}

func TestConsoleServiceMock(t *testing.T) {
	svc := NewConsoleServiceMock(testutil.NewConfig())
	ctx := context.Background()

	svc.SetFail(assert.AnError)
	assert.ErrorIs(t, svc.Send(ctx, message()), assert.AnError)
	assert.Empty(t, svc.SentMessages())

	svc.SetFail(nil)
	require.NoError(t, svc.Send(ctx, message()))
	sent := svc.SentMessages()
	require.Len(t, sent, 1)
	assert.Equal(t, "ana@escola.com", sent[0].To[0].Address)
}

func TestSendgridService_Send(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		wantErr bool
	}{
		{"accepted", http.StatusAccepted, false},
		{"rejected", http.StatusUnauthorized, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got map[string]interface{}
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, endpoint, r.URL.Path)
				assert.Equal(t, "Bearer SG.test", r.Header.Get("Authorization"))
				raw, _ := io.ReadAll(r.Body)
				assert.NoError(t, json.Unmarshal(raw, &got))
				w.WriteHeader(tt.status)
			}))
			defer srv.Close()

			conf := testutil.NewConfig()
			conf.SendgridApiKey = "SG.test"
			svc := NewSendgridService(conf)
			svc.host = srv.URL

			err := svc.Send(context.Background(), message())
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}

			require.NotNil(t, got)
			pers := got["personalizations"].([]interface{})[0].(map[string]interface{})
			assert.Equal(t, "[Atlas] Oi", pers["subject"])
			assert.Equal(t, "ana@escola.com", pers["to"].([]interface{})[0].(map[string]interface{})["email"])
			assert.Len(t, got["content"], 2)
		})
	}
}
