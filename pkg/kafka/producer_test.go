package kafka

import (
	"testing"

	"github.com/segmentio/kafka-go"
)

func TestNewProducerRequiresBrokers(t *testing.T) {
	if _, err := NewProducer(); err == nil {
		t.Fatalf("expected error without brokers")
	}
}

func TestEncodeValue(t *testing.T) {
	cases := []struct {
		in   interface{}
		want string
	}{
		{[]byte("raw"), "raw"},
		{"text", "text"},
		{map[string]int{"count": 2}, `{"count":2}`},
	}
	for _, tc := range cases {
		got, err := encodeValue(tc.in)
		if err != nil {
			t.Fatalf("encode %v: %v", tc.in, err)
		}
		if string(got) != tc.want {
			t.Fatalf("encode %v = %s, want %s", tc.in, got, tc.want)
		}
	}
}

func TestParseCompression(t *testing.T) {
	if parseCompression("zstd") != kafka.Zstd || parseCompression("bogus") != kafka.Gzip {
		t.Fatalf("unexpected compression mapping")
	}
}

func TestProducerConfigOptions(t *testing.T) {
	p, err := NewProducer(WithBrokers([]string{"localhost:9092"}), WithCompression("snappy"), WithRequiredAcks(-1))
	if err != nil {
		t.Fatalf("new producer: %v", err)
	}
	defer p.Close()
	if p.comp != "snappy" || p.writer.RequiredAcks != kafka.RequireAll {
		t.Fatalf("options not applied: comp=%s acks=%v", p.comp, p.writer.RequiredAcks)
	}
}
