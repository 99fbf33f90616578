package handler

import (
	"fmt"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/carrental/storefront/internal/infrastructure/rentalapi"
)

type UploadHandler struct {
	uploads  *rentalapi.UploadAPI
	maxBytes int64
}

func NewUploadHandler(uploads *rentalapi.UploadAPI, maxBytes int64) *UploadHandler {
	if maxBytes <= 0 {
		maxBytes = rentalapi.DefaultMaxUploadBytes
	}
	return &UploadHandler{uploads: uploads, maxBytes: maxBytes}
}

type deleteImageRequest struct {
	ImageURL string `json:"imageUrl" validate:"required"`
}

// Upload stores one or more images. Files go under "images"; an optional
// "folder" field picks the destination.
//
// @Summary      Upload images
// @Tags         admin
// @Accept       mpfd
// @Produce      json
// @Param        images  formData  file    true   "Images (jpeg, png, gif; max 5MB each)"
// @Param        folder  formData  string  false  "Destination folder"
// @Success      201     {object}  rentalapi.Result
// @Failure      422     {object}  map[string]any
// @Router       /admin/uploads [post]
func (h *UploadHandler) Upload(c echo.Context) error {
	form, err := c.MultipartForm()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid multipart form")
	}
	opts := rentalapi.UploadOptions{Folder: c.FormValue("folder")}

	imgs := make([]*rentalapi.File, 0, len(form.File["images"]))
	for _, fh := range form.File["images"] {
		f, err := fh.Open()
		if err != nil {
			return fmt.Errorf("open upload %s: %w", fh.Filename, err)
		}
		data, err := io.ReadAll(io.LimitReader(f, h.maxBytes+1))
		f.Close()
		if err != nil {
			return fmt.Errorf("read upload %s: %w", fh.Filename, err)
		}
		imgs = append(imgs, &rentalapi.File{Name: fh.Filename, Data: data})
	}

	ctx := c.Request().Context()
	var res *rentalapi.Result
	if len(imgs) == 1 {
		res, err = h.uploads.Image(ctx, imgs[0], opts)
	} else {
		res, err = h.uploads.Images(ctx, imgs, opts)
	}
	if err != nil {
		return err
	}
	return renderResult(c, http.StatusCreated, res)
}

// List returns the stored images.
//
// @Summary      List uploaded images
// @Tags         admin
// @Produce      json
// @Success      200  {object}  rentalapi.Result
// @Router       /admin/uploads [get]
func (h *UploadHandler) List(c echo.Context) error {
	res, err := h.uploads.List(c.Request().Context(), c.QueryParams())
	if err != nil {
		return err
	}
	return renderResult(c, http.StatusOK, res)
}

// Delete removes a stored image by URL.
//
// @Summary      Delete uploaded image
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        body  body      deleteImageRequest  true  "Image URL"
// @Success      200   {object}  rentalapi.Result
// @Router       /admin/uploads [delete]
func (h *UploadHandler) Delete(c echo.Context) error {
	var req deleteImageRequest
	if err := bindValid(c, &req); err != nil {
		return err
	}
	res, err := h.uploads.Delete(c.Request().Context(), req.ImageURL)
	if err != nil {
		return err
	}
	return renderResult(c, http.StatusOK, res)
}
