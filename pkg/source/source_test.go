package source

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/google/go-cmp/cmp"

	"github.com/vango-dev/emtpl/internal/config"
	"github.com/vango-dev/emtpl/internal/errors"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestDir(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "card.html"), "<div>card</div>")
	writeFile(t, filepath.Join(dir, "list", "item.html"), "<li>item</li>")
	writeFile(t, filepath.Join(dir, "notes.txt"), "ignored")

	src := NewDir(dir, ".html")
	ctx := context.Background()

	got, err := src.Load(ctx, "list/item")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got != "<li>item</li>" {
		t.Errorf("Load = %q", got)
	}

	names, err := src.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if diff := cmp.Diff([]string{"card", "list/item"}, names); diff != "" {
		t.Errorf("List mismatch (-want +got):\n%s", diff)
	}

	for _, name := range []string{"missing", "../card", "/etc/passwd", "", "."} {
		if _, err := src.Load(ctx, name); !IsNotFound(err) {
			t.Errorf("Load(%q) error = %v, want S001", name, err)
		}
	}
}

func TestDirCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := NewDir(t.TempDir(), ".html").Load(ctx, "x"); err != context.Canceled {
		t.Errorf("Load error = %v, want context.Canceled", err)
	}
}

func TestMemory(t *testing.T) {
	src := NewMemory(map[string]string{"b": "<b/>"})
	src.Put("a", "<a/>")
	ctx := context.Background()

	if got, err := src.Load(ctx, "a"); err != nil || got != "<a/>" {
		t.Errorf("Load(a) = %q, %v", got, err)
	}
	if _, err := src.Load(ctx, "c"); !IsNotFound(err) {
		t.Errorf("Load(c) error = %v, want S001", err)
	}
	names, _ := src.List(ctx)
	if diff := cmp.Diff([]string{"a", "b"}, names); diff != "" {
		t.Errorf("List mismatch (-want +got):\n%s", diff)
	}
}

type fakeS3 struct {
	objects map[string]string
	err     error
}

func (f *fakeS3) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	body, ok := f.objects[aws.ToString(in.Key)]
	if !ok {
		return nil, &types.NoSuchKey{Message: aws.String("no such key")}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader([]byte(body)))}, nil
}

func (f *fakeS3) ListObjectsV2(_ context.Context, in *s3.ListObjectsV2Input, _ ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	out := &s3.ListObjectsV2Output{}
	for k := range f.objects {
		out.Contents = append(out.Contents, types.Object{Key: aws.String(k)})
	}
	return out, nil
}

func TestS3(t *testing.T) {
	client := &fakeS3{objects: map[string]string{
		"tpl/card.html":      "<div>card</div>",
		"tpl/list/item.html": "<li/>",
		"tpl/readme.md":      "#",
	}}
	src := NewS3(client, "bucket", "tpl/", ".html")
	ctx := context.Background()

	got, err := src.Load(ctx, "card")
	if err != nil || got != "<div>card</div>" {
		t.Errorf("Load(card) = %q, %v", got, err)
	}
	if _, err := src.Load(ctx, "nope"); !IsNotFound(err) {
		t.Errorf("Load(nope) error = %v, want S001", err)
	}

	names, err := src.List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"card", "list/item"}, names); diff != "" {
		t.Errorf("List mismatch (-want +got):\n%s", diff)
	}
}

func TestS3Failure(t *testing.T) {
	src := NewS3(&fakeS3{err: io.ErrUnexpectedEOF}, "bucket", "", ".html")
	_, err := src.Load(context.Background(), "card")
	if errors.CodeOf(err) != "S002" {
		t.Errorf("error = %v, want S002", err)
	}
}

func TestFromConfig(t *testing.T) {
	cfg := config.New()
	if _, ok := FromConfig(cfg).(*Dir); !ok {
		t.Error("FromConfig without bucket should return *Dir")
	}
	cfg.Templates.Bucket = "b"
	cfg.Templates.Region = "eu-west-1"
	if _, ok := FromConfig(cfg).(*S3); !ok {
		t.Error("FromConfig with bucket should return *S3")
	}
}
