package jsoncodec

import (
	"testing"

	"google.golang.org/grpc/encoding"
	grpc_health_v1 "google.golang.org/grpc/health/grpc_health_v1"
)

type sample struct {
	SessionID string   `json:"session_id"`
	Actions   []string `json:"actions,omitempty"`
}

func TestCodecIsRegistered(t *testing.T) {
	if encoding.GetCodec(Name) == nil {
		t.Fatalf("codec %q not registered", Name)
	}
}

func TestCodecPlainStructs(t *testing.T) {
	codec := Codec{}
	data, err := codec.Marshal(&sample{SessionID: "abc", Actions: []string{"digit:5"}})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(data) != `{"session_id":"abc","actions":["digit:5"]}` {
		t.Fatalf("payload = %s", data)
	}

	var got sample
	if err := codec.Unmarshal(data, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.SessionID != "abc" || len(got.Actions) != 1 {
		t.Fatalf("decoded = %+v", got)
	}
}

func TestCodecEmptyPayload(t *testing.T) {
	var got sample
	if err := (Codec{}).Unmarshal(nil, &got); err != nil {
		t.Fatalf("unmarshal empty: %v", err)
	}
	if got.SessionID != "" {
		t.Fatalf("decoded = %+v, want zero", got)
	}
}

func TestCodecProtoMessages(t *testing.T) {
	codec := Codec{}
	data, err := codec.Marshal(&grpc_health_v1.HealthCheckRequest{Service: "calcdeck.v1.CalculatorService"})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var got grpc_health_v1.HealthCheckRequest
	if err := codec.Unmarshal(data, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.GetService() != "calcdeck.v1.CalculatorService" {
		t.Fatalf("service = %q", got.GetService())
	}
}

func TestCodecRejectsMalformedJSON(t *testing.T) {
	var got sample
	if err := (Codec{}).Unmarshal([]byte("{"), &got); err == nil {
		t.Fatal("expected unmarshal error")
	}
}
