package rentalapi

import (
	"context"
	"net/http"
	"net/url"
)

// UploadAPI covers the generic image store.
type UploadAPI struct{ c *Client }

// UploadOptions are extra form fields sent with an upload.
type UploadOptions struct {
	Folder string
}

func (o UploadOptions) fields() []formField {
	if o.Folder == "" {
		return nil
	}
	return []formField{{"folder", o.Folder}}
}

func (a *UploadAPI) Image(ctx context.Context, img *File, opts UploadOptions) (*Result, error) {
	files := []formFile{{field: "image", file: img}}
	return a.c.upload(ctx, http.MethodPost, "/upload/image", opts.fields(), files, "Failed to upload image.")
}

func (a *UploadAPI) Images(ctx context.Context, imgs []*File, opts UploadOptions) (*Result, error) {
	files := make([]formFile, 0, len(imgs))
	for _, img := range imgs {
		files = append(files, formFile{field: "images", file: img})
	}
	if len(files) == 0 {
		return nil, a.c.invalid(http.MethodPost, "/upload/images", []string{"File is required"}, "Failed to upload images.")
	}
	return a.c.upload(ctx, http.MethodPost, "/upload/images", opts.fields(), files, "Failed to upload images.")
}

func (a *UploadAPI) Delete(ctx context.Context, imageURL string) (*Result, error) {
	body := map[string]string{"imageUrl": imageURL}
	return a.c.delete(ctx, "/upload/image", body, "Failed to delete image.")
}

func (a *UploadAPI) List(ctx context.Context, params url.Values) (*Result, error) {
	return a.c.get(ctx, "/upload/images", params, "Failed to fetch uploaded images.")
}
