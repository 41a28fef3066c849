// Package filemgr stores uploaded hotel photos and their thumbnails under
// the static upload directory.
package filemgr

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"voyago/cascade"
	"voyago/hotels"
	"voyago/utils"

	"github.com/disintegration/imaging"
	"github.com/julienschmidt/httprouter"
)

const maxUploadBytes = 10 << 20

// ServePrefix is the URL prefix the static file route serves uploads under.
// Served paths are built from it, not from the upload directory, so an
// absolute UPLOAD_DIR still yields a routable URL.
const ServePrefix = "/static/hotelpic/"

type Saver struct {
	baseDir string
}

func NewSaver(baseDir string) *Saver {
	return &Saver{baseDir: baseDir}
}

// SaveImage decodes the upload, writes the full-size JPEG and a 300px-wide
// thumbnail, and returns the served path of the original.
func (s *Saver) SaveImage(src io.Reader) (string, error) {
	img, err := imaging.Decode(src)
	if err != nil {
		return "", fmt.Errorf("decode image: %w", err)
	}

	name := utils.GetUUID() + ".jpg"
	thumbDir := filepath.Join(s.baseDir, "thumb")
	if err := os.MkdirAll(thumbDir, 0755); err != nil {
		return "", err
	}

	if err := imaging.Save(img, filepath.Join(s.baseDir, name)); err != nil {
		return "", fmt.Errorf("save image: %w", err)
	}

	thumb := imaging.Resize(img, 300, 0, imaging.Lanczos)
	if err := imaging.Save(thumb, filepath.Join(thumbDir, name)); err != nil {
		return "", fmt.Errorf("save thumbnail: %w", err)
	}

	return ServePrefix + name, nil
}

type Handler struct {
	saver  *Saver
	hotels *hotels.Handler
}

func NewHandler(saver *Saver, hotels *hotels.Handler) *Handler {
	return &Handler{saver: saver, hotels: hotels}
}

// POST /hotels/:id/images — multipart field "photo".
func (h *Handler) UploadHotelImage(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	hotelID, err := utils.ParseID(ps.ByName("id"))
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid hotel ID")
		return
	}

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Failed to parse form data")
		return
	}

	file, header, err := r.FormFile("photo")
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "photo field is required")
		return
	}
	defer file.Close()

	if !utils.SupportedImageTypes[header.Header.Get("Content-Type")] {
		utils.RespondWithError(w, http.StatusBadRequest, "Unsupported image type")
		return
	}

	path, err := h.saver.SaveImage(file)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Could not process image")
		return
	}

	if err := h.hotels.AddImage(r.Context(), hotelID, path); err != nil {
		if errors.Is(err, cascade.ErrNotFound) {
			utils.RespondWithError(w, http.StatusNotFound, "Hotel not found")
			return
		}
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to attach image")
		return
	}

	utils.RespondWithJSON(w, http.StatusCreated, utils.M{"path": path, "message": "Image uploaded"})
}
