package middleware

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v3"

	"github.com/JMirval/alelysee/internal/feed"
	"github.com/JMirval/alelysee/internal/model"
)

func TestValidateID(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantID  string
		wantErr bool
	}{
		{"valid", "0f8fad5b-d9cb-469f-a165-70867728950e", "0f8fad5b-d9cb-469f-a165-70867728950e", false},
		{"uppercase", "0F8FAD5B-D9CB-469F-A165-70867728950E", "0f8fad5b-d9cb-469f-a165-70867728950e", false},
		{"surrounding space", "  0f8fad5b-d9cb-469f-a165-70867728950e ", "0f8fad5b-d9cb-469f-a165-70867728950e", false},
		{"empty", "", "", true},
		{"not a uuid", "dQw4w9WgXcQ", "", true},
		{"urn form", "urn:uuid:0f8fad5b-d9cb-469f-a165-70867728950e", "", true},
		{"braces", "{0f8fad5b-d9cb-469f-a165-70867728950e}", "", true},
		{"bad hex", "0f8fad5b-d9cb-469f-a165-70867728950z", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, errMsg := ValidateID("videoId", tt.input)
			if tt.wantErr {
				if errMsg == "" {
					t.Errorf("ValidateID(%q) expected error, got %s", tt.input, id)
				}
				return
			}
			if errMsg != "" {
				t.Fatalf("ValidateID(%q) unexpected error: %s", tt.input, errMsg)
			}
			if id.String() != tt.wantID {
				t.Errorf("ValidateID(%q) = %s, want %s", tt.input, id, tt.wantID)
			}
		})
	}
}

func TestValidateTargetType(t *testing.T) {
	tests := []struct {
		input   string
		want    model.TargetType
		wantErr bool
	}{
		{"proposal", model.TargetProposal, false},
		{"Program", model.TargetProgram, false},
		{"video", model.TargetVideo, false},
		{"comment", model.TargetComment, false},
		{"podcast", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		got, errMsg := ValidateTargetType(tt.input)
		if (errMsg != "") != tt.wantErr {
			t.Errorf("ValidateTargetType(%q) error = %q, wantErr %v", tt.input, errMsg, tt.wantErr)
		}
		if got != tt.want {
			t.Errorf("ValidateTargetType(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestValidatePage(t *testing.T) {
	tests := []struct {
		name    string
		query   string
		want    feed.Page
		wantErr bool
	}{
		{"defaults", "", feed.Page{Limit: 10, Offset: 0}, false},
		{"explicit", "?limit=5&offset=20", feed.Page{Limit: 5, Offset: 20}, false},
		{"zero limit", "?limit=0", feed.Page{Limit: 0, Offset: 0}, false},
		{"max limit", "?limit=50", feed.Page{Limit: 50, Offset: 0}, false},
		{"over max", "?limit=51", feed.Page{}, true},
		{"negative limit", "?limit=-1", feed.Page{}, true},
		{"negative offset", "?offset=-3", feed.Page{}, true},
		{"garbage", "?limit=ten", feed.Page{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got feed.Page
			var errMsg string

			app := fiber.New()
			app.Get("/", func(c fiber.Ctx) error {
				got, errMsg = ValidatePage(c)
				return c.SendStatus(fiber.StatusNoContent)
			})
			if _, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/"+tt.query, nil)); err != nil {
				t.Fatalf("app.Test: %v", err)
			}

			if (errMsg != "") != tt.wantErr {
				t.Fatalf("ValidatePage(%q) error = %q, wantErr %v", tt.query, errMsg, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ValidatePage(%q) = %+v, want %+v", tt.query, got, tt.want)
			}
		})
	}
}
