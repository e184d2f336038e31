package handler_test

import (
	"ImageHosting/config"
	"ImageHosting/internal/dto"
	"ImageHosting/internal/handler"
	"ImageHosting/internal/service"
	"ImageHosting/internal/storage"
	"ImageHosting/model"
	"ImageHosting/router"
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/png"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"sort"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

type memImageStore struct {
	records []model.Image
	nextID  uint64
}

func (m *memImageStore) Insert(ctx context.Context, img *model.Image) error {
	for _, rec := range m.records {
		if rec.ContentHash == img.ContentHash && rec.FileType == img.FileType {
			return nil
		}
	}
	m.nextID++
	img.ID = m.nextID
	m.records = append(m.records, *img)
	return nil
}

func (m *memImageStore) PageByRecency(ctx context.Context, limit, offset int) ([]model.Image, error) {
	sorted := make([]model.Image, len(m.records))
	copy(sorted, m.records)
	sort.Slice(sorted, func(i, j int) bool {
		if !sorted[i].UploadTime.Equal(sorted[j].UploadTime) {
			return sorted[i].UploadTime.After(sorted[j].UploadTime)
		}
		return sorted[i].ID > sorted[j].ID
	})
	if offset >= len(sorted) {
		return nil, nil
	}
	end := offset + limit
	if end > len(sorted) {
		end = len(sorted)
	}
	return sorted[offset:end], nil
}

func (m *memImageStore) Delete(ctx context.Context, contentHash, fileType string) (int64, error) {
	var kept []model.Image
	var affected int64
	for _, rec := range m.records {
		if rec.ContentHash == contentHash && rec.FileType == fileType {
			affected++
			continue
		}
		kept = append(kept, rec)
	}
	m.records = kept
	return affected, nil
}

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	config.InitConfig()
	os.Exit(m.Run())
}

func newTestRouter(t *testing.T) (*gin.Engine, *memImageStore) {
	t.Helper()
	blobs, err := storage.NewDiskStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	store := &memImageStore{}
	svc := service.NewImageService(store, blobs, nil, 0)
	return router.InitRouter(handler.NewImageHandler(svc)), store
}

func testPNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 8, 8))
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func doUpload(t *testing.T, r *gin.Engine, payload []byte, filename string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/upload/", bytes.NewReader(payload))
	req.Header.Set("Filename", filename)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestUploadEndpoint(t *testing.T) {
	r, store := newTestRouter(t)

	w := doUpload(t, r, testPNG(t), "holiday.png")
	if w.Code != http.StatusOK {
		t.Fatalf("expect 200, got %d: %s", w.Code, w.Body.String())
	}
	name := w.Header().Get("Filename")
	if name == "" {
		t.Fatal("missing Filename header on upload response")
	}
	if loc := w.Header().Get("Location"); loc != "/images/"+name {
		t.Fatalf("unexpected Location header %q", loc)
	}
	if len(store.records) != 1 {
		t.Fatalf("expect 1 record, got %d", len(store.records))
	}

	// The stored image is served back under /images/.
	req := httptest.NewRequest(http.MethodGet, "/images/"+name, nil)
	w2 := httptest.NewRecorder()
	r.ServeHTTP(w2, req)
	if w2.Code != http.StatusOK {
		t.Fatalf("expect 200 serving image, got %d", w2.Code)
	}
	body, _ := io.ReadAll(w2.Body)
	if !bytes.Equal(body, testPNG(t)) {
		t.Fatal("served bytes differ from uploaded bytes")
	}
}

func TestUploadRejectsUnsupportedFormat(t *testing.T) {
	r, store := newTestRouter(t)

	w := doUpload(t, r, []byte("plain text pretending"), "notes.png")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expect 400, got %d", w.Code)
	}
	if len(store.records) != 0 {
		t.Fatal("rejected upload created a record")
	}
}

func TestUploadRequiresFilenameHeader(t *testing.T) {
	r, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/upload/", bytes.NewReader(testPNG(t)))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expect 400, got %d", w.Code)
	}
}

func listImages(t *testing.T, r *gin.Engine, path string) dto.ListImagesResponse {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("GET %s: expect 200, got %d", path, w.Code)
	}
	var resp dto.ListImagesResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode listing: %v", err)
	}
	return resp
}

func TestListEndpointsPageSizes(t *testing.T) {
	r, store := newTestRouter(t)

	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 11; i++ {
		store.nextID++
		store.records = append(store.records, model.Image{
			ID:          store.nextID,
			ContentHash: string(rune('a'+i)) + "0000",
			FileType:    ".png",
			SizeKB:      1,
			UploadTime:  base.Add(time.Duration(i) * time.Minute),
		})
	}

	grid := listImages(t, r, "/api/images/")
	if len(grid.Images) != 9 {
		t.Fatalf("grid view: expect 9 images, got %d", len(grid.Images))
	}
	table := listImages(t, r, "/api/images-list/")
	if len(table.Images) != 10 {
		t.Fatalf("table view: expect 10 images, got %d", len(table.Images))
	}

	// page below 1 clamps to the first page.
	clamped := listImages(t, r, "/api/images/?page=0")
	if len(clamped.Images) != 9 || clamped.Images[0].Filename != grid.Images[0].Filename {
		t.Fatal("page=0 not clamped to page 1")
	}

	second := listImages(t, r, "/api/images/?page=2")
	if len(second.Images) != 2 {
		t.Fatalf("expect 2 images on page 2, got %d", len(second.Images))
	}
}

func TestListEndpointEmptyIsArray(t *testing.T) {
	r, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/images/", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expect 200, got %d", w.Code)
	}
	if !bytes.Contains(w.Body.Bytes(), []byte(`"images":[]`)) {
		t.Fatalf("empty listing should serialize an empty array, got %s", w.Body.String())
	}
}

func TestDeleteEndpoint(t *testing.T) {
	r, store := newTestRouter(t)

	up := doUpload(t, r, testPNG(t), "gone.png")
	if up.Code != http.StatusOK {
		t.Fatal(up.Body.String())
	}
	name := up.Header().Get("Filename")

	req := httptest.NewRequest(http.MethodDelete, "/api/delete/"+name, nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expect 200, got %d: %s", w.Code, w.Body.String())
	}
	if len(store.records) != 0 {
		t.Fatal("record survived delete")
	}

	// Repeat delete and the image is gone on both sides.
	w2 := httptest.NewRecorder()
	r.ServeHTTP(w2, httptest.NewRequest(http.MethodDelete, "/api/delete/"+name, nil))
	if w2.Code != http.StatusNotFound {
		t.Fatalf("expect 404 on repeat delete, got %d", w2.Code)
	}

	w3 := httptest.NewRecorder()
	r.ServeHTTP(w3, httptest.NewRequest(http.MethodGet, "/images/"+name, nil))
	if w3.Code != http.StatusNotFound {
		t.Fatalf("expect 404 serving deleted image, got %d", w3.Code)
	}
}

func TestUnmatchedRoutesAnswer405(t *testing.T) {
	r, _ := newTestRouter(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/nope", nil))
	if w.Code != http.StatusMethodNotAllowed {
		t.Fatalf("unknown path: expect 405, got %d", w.Code)
	}

	w2 := httptest.NewRecorder()
	r.ServeHTTP(w2, httptest.NewRequest(http.MethodPut, "/upload/", nil))
	if w2.Code != http.StatusMethodNotAllowed {
		t.Fatalf("wrong method: expect 405, got %d", w2.Code)
	}
}
