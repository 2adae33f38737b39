package storage

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"sort"
	"strings"
	"testing"

	"github.com/kozaktomas/face-attendance/internal/attendance"
)

// fakeBucket serves the storage listing and download endpoints from an
// in-memory path -> content map. Paths with a "/" get folder entries
// synthesized with null metadata, the way the real API reports them.
func fakeBucket(t *testing.T, bucket string, objects map[string][]byte) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if auth := r.Header.Get("Authorization"); auth != "Bearer test-key" {
			t.Errorf("unexpected authorization header %q", auth)
		}

		listPath := "/storage/v1/object/list/" + bucket
		downloadPrefix := "/storage/v1/object/" + bucket + "/"

		switch {
		case r.Method == http.MethodPost && r.URL.Path == listPath:
			var req struct {
				Prefix string `json:"prefix"`
			}
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				t.Errorf("could not decode list request: %v", err)
				w.WriteHeader(http.StatusBadRequest)
				return
			}

			type entry struct {
				Name     string          `json:"name"`
				Metadata json.RawMessage `json:"metadata"`
			}
			seen := make(map[string]entry)
			for path := range objects {
				rel := path
				if req.Prefix != "" {
					if len(path) <= len(req.Prefix) || path[:len(req.Prefix)+1] != req.Prefix+"/" {
						continue
					}
					rel = path[len(req.Prefix)+1:]
				}
				if i := strings.IndexByte(rel, '/'); i >= 0 {
					name := rel[:i]
					seen[name] = entry{Name: name, Metadata: json.RawMessage("null")}
				} else {
					seen[rel] = entry{Name: rel, Metadata: json.RawMessage(`{"size": 1}`)}
				}
			}

			names := make([]string, 0, len(seen))
			for name := range seen {
				names = append(names, name)
			}
			sort.Strings(names)
			entries := make([]entry, 0, len(names))
			for _, name := range names {
				entries = append(entries, seen[name])
			}

			w.Header().Set("Content-Type", "application/json")
			if err := json.NewEncoder(w).Encode(entries); err != nil {
				t.Errorf("could not encode listing: %v", err)
			}

		case r.Method == http.MethodGet && len(r.URL.Path) > len(downloadPrefix) && r.URL.Path[:len(downloadPrefix)] == downloadPrefix:
			data, ok := objects[r.URL.Path[len(downloadPrefix):]]
			if !ok {
				http.Error(w, "object not found", http.StatusNotFound)
				return
			}
			_, _ = w.Write(data)

		default:
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}))
}

func TestList(t *testing.T) {
	objects := map[string][]byte{
		"alice/1.jpg":        []byte("a1"),
		"alice/2.jpg":        []byte("a2"),
		"bob/nested/3.jpg":   []byte("b3"),
		"readme.txt":         []byte("top"),
		"carol/profile.jpeg": []byte("c1"),
	}
	server := fakeBucket(t, "student-images", objects)
	defer server.Close()

	client, err := New(server.URL, "test-key")
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	paths, err := client.List(context.Background(), "student-images", "")
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}

	sort.Strings(paths)
	want := []string{"alice/1.jpg", "alice/2.jpg", "bob/nested/3.jpg", "carol/profile.jpeg", "readme.txt"}
	if !reflect.DeepEqual(paths, want) {
		t.Errorf("List = %v, want %v", paths, want)
	}
}

func TestListPrefix(t *testing.T) {
	objects := map[string][]byte{
		"alice/1.jpg": []byte("a1"),
		"bob/2.jpg":   []byte("b2"),
	}
	server := fakeBucket(t, "student-images", objects)
	defer server.Close()

	client, err := New(server.URL, "test-key")
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	paths, err := client.List(context.Background(), "student-images", "alice")
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}

	want := []string{"alice/1.jpg"}
	if !reflect.DeepEqual(paths, want) {
		t.Errorf("List = %v, want %v", paths, want)
	}
}

func TestDownload(t *testing.T) {
	objects := map[string][]byte{"alice/1.jpg": []byte("image bytes")}
	server := fakeBucket(t, "student-images", objects)
	defer server.Close()

	client, err := New(server.URL, "test-key")
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	data, err := client.Download(context.Background(), "student-images", "alice/1.jpg")
	if err != nil {
		t.Fatalf("Download failed: %v", err)
	}
	if string(data) != "image bytes" {
		t.Errorf("Download = %q, want %q", data, "image bytes")
	}

	if _, err := client.Download(context.Background(), "student-images", "alice/missing.jpg"); err == nil {
		t.Error("Download of a missing object should fail")
	}
}

func TestNewValidation(t *testing.T) {
	if _, err := New("", "key"); err == nil {
		t.Error("New should reject an empty URL")
	}
	if _, err := New("http://storage.example.com/", "key"); err != nil {
		t.Errorf("New rejected a valid URL: %v", err)
	}
}

func TestSubjectImages(t *testing.T) {
	objects := map[string][]byte{
		"Alice/1.jpg":  []byte("a1"),
		"Alice/2.jpg":  []byte("a2"),
		"Jiří/1.jpg":   []byte("j1"),
		"carol/1.jpg":  []byte("c1"),
		"stray.txt":    []byte("top"),
		"intruder/x.j": []byte("i1"),
	}
	server := fakeBucket(t, "student-images", objects)
	defer server.Close()

	client, err := New(server.URL, "test-key")
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	source := NewBucketSource(client, "student-images")

	roster := []attendance.SubjectID{"alice", "jiri"}
	images, err := source.SubjectImages(context.Background(), roster)
	if err != nil {
		t.Fatalf("SubjectImages failed: %v", err)
	}

	if len(images) != 2 {
		t.Fatalf("got %d subjects %v, want 2", len(images), images)
	}
	if len(images["alice"]) != 2 {
		t.Errorf("alice images = %v, want 2 paths", images["alice"])
	}
	// folder names normalize the same way roster entries do
	if len(images["jiri"]) != 1 {
		t.Errorf("jiri images = %v, want 1 path", images["jiri"])
	}
	if _, ok := images["intruder"]; ok {
		t.Error("subjects outside the roster must be excluded")
	}
}

func TestBucketSourceFetch(t *testing.T) {
	objects := map[string][]byte{"alice/1.jpg": []byte("photo")}
	server := fakeBucket(t, "student-images", objects)
	defer server.Close()

	client, err := New(server.URL, "test-key")
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	source := NewBucketSource(client, "student-images")

	data, err := source.Fetch(context.Background(), "alice/1.jpg")
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if string(data) != "photo" {
		t.Errorf("Fetch = %q, want %q", data, "photo")
	}
}
