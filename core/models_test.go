package core

import (
	"testing"
)

func TestIDFromContent(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{
			name:    "same content produces same ID",
			content: "test content",
		},
		{
			name:    "empty string",
			content: "",
		},
		{
			name:    "long content",
			content: "This is a much longer piece of content that should still hash consistently",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id1 := IDFromContent(tt.content)
			id2 := IDFromContent(tt.content)

			if id1 != id2 {
				t.Errorf("IDFromContent() produced different IDs for same content: %d vs %d", id1, id2)
			}
		})
	}
}

func TestIDFromContent_Different(t *testing.T) {
	id1 := IDFromContent("content1")
	id2 := IDFromContent("content2")

	if id1 == id2 {
		t.Errorf("IDFromContent() produced same ID for different content")
	}
}

func TestChunkID(t *testing.T) {
	id1 := ChunkID("meeting-42", 0)
	id2 := ChunkID("meeting-42", 0)
	if id1 != id2 {
		t.Errorf("ChunkID() is not deterministic: %d vs %d", id1, id2)
	}

	if ChunkID("meeting-42", 0) == ChunkID("meeting-42", 1) {
		t.Errorf("ChunkID() produced same ID for different sequence indexes")
	}
	if ChunkID("meeting-42", 0) == ChunkID("meeting-43", 0) {
		t.Errorf("ChunkID() produced same ID for different scopes")
	}
}

func TestSourceType_String(t *testing.T) {
	tests := []struct {
		source SourceType
		want   string
	}{
		{SourceTypeMessage, "message"},
		{SourceTypeDocument, "document"},
		{SourceTypeTranscript, "transcript"},
		{SourceType(0), "unknown"},
		{SourceType(99), "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.source.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParseSourceType(t *testing.T) {
	for _, source := range []SourceType{SourceTypeMessage, SourceTypeDocument, SourceTypeTranscript} {
		parsed, err := ParseSourceType(source.String())
		if err != nil {
			t.Fatalf("ParseSourceType(%q) error: %v", source.String(), err)
		}
		if parsed != source {
			t.Errorf("ParseSourceType(%q) = %v, want %v", source.String(), parsed, source)
		}
	}

	if _, err := ParseSourceType("spreadsheet"); err == nil {
		t.Errorf("ParseSourceType() accepted unknown name")
	}
}

func TestJobStage_Terminal(t *testing.T) {
	tests := []struct {
		stage JobStage
		want  bool
	}{
		{JobStageQueued, false},
		{JobStageChunking, false},
		{JobStageEmbedding, false},
		{JobStageIndexed, true},
		{JobStageFailed, true},
	}

	for _, tt := range tests {
		t.Run(string(tt.stage), func(t *testing.T) {
			if got := tt.stage.Terminal(); got != tt.want {
				t.Errorf("Terminal() = %v, want %v", got, tt.want)
			}
		})
	}
}
