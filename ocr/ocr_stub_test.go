//go:build !ocr

package ocr

import (
	"errors"
	"testing"

	"github.com/tsawler/spatialtext/errs"
)

func TestStubClient(t *testing.T) {
	client, err := New()
	if client != nil || !errors.Is(err, ErrOCRNotEnabled) {
		t.Fatalf("New() = %v, %v", client, err)
	}
	if !errors.Is(err, errs.ErrUnsupportedFormat) {
		t.Errorf("stub error should match ErrUnsupportedFormat: %v", err)
	}
	if err := client.Close(); err != nil {
		t.Errorf("Close() on nil client = %v", err)
	}
}

func TestStubRecognition(t *testing.T) {
	var client Client
	calls := map[string]error{
		"SetLanguage":    client.SetLanguage("eng"),
		"SetPageSegMode": client.SetPageSegMode(PSM_SINGLE_BLOCK),
	}
	_, calls["Recognize"] = client.Recognize(nil, Options{})
	_, calls["RecognizeFile"] = client.RecognizeFile("page.png", Options{})
	_, calls["RecognizeImage"] = client.RecognizeImage(nil)
	for name, err := range calls {
		if !errors.Is(err, ErrOCRNotEnabled) {
			t.Errorf("%s() error = %v", name, err)
		}
	}
	if client.Version() != "" {
		t.Errorf("Version() = %q", client.Version())
	}
}
