package rentalapi

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/carrental/storefront/internal/core/domain"
)

// CarAPI covers the public catalogue and the admin fleet endpoints.
type CarAPI struct{ c *Client }

func (a *CarAPI) List(ctx context.Context, params url.Values) (*Result, error) {
	return a.c.get(ctx, "/cars", params, "Failed to fetch cars.")
}

func (a *CarAPI) Available(ctx context.Context, params url.Values) (*Result, error) {
	return a.c.get(ctx, "/cars/available", params, "Failed to fetch available cars.")
}

func (a *CarAPI) Get(ctx context.Context, id string) (*Result, error) {
	return a.c.get(ctx, resource("/cars/%s", id), nil, "Failed to fetch car details.")
}

func (a *CarAPI) Search(ctx context.Context, s domain.CarSearch) (*Result, error) {
	return a.c.get(ctx, "/cars/search", searchQuery(s), "Car search failed.")
}

func (a *CarAPI) Create(ctx context.Context, car domain.Car) (*Result, error) {
	return a.c.post(ctx, "/admin/cars", car, "Failed to create car.")
}

func (a *CarAPI) Update(ctx context.Context, id string, car domain.Car) (*Result, error) {
	return a.c.put(ctx, resource("/admin/cars/%s", id), car, "Failed to update car.")
}

func (a *CarAPI) Delete(ctx context.Context, id string) (*Result, error) {
	return a.c.delete(ctx, resource("/admin/cars/%s", id), nil, "Failed to delete car.")
}

func (a *CarAPI) ToggleAvailability(ctx context.Context, id string) (*Result, error) {
	return a.c.patch(ctx, resource("/admin/cars/%s/availability", id), nil, "Failed to update car availability.")
}

func (a *CarAPI) UploadImage(ctx context.Context, id string, img *File) (*Result, error) {
	files := []formFile{{field: "image", file: img}}
	return a.c.upload(ctx, http.MethodPost, resource("/admin/cars/%s/images", id), nil, files, "Failed to upload car image.")
}

func (a *CarAPI) DeleteImage(ctx context.Context, id, imageID string) (*Result, error) {
	return a.c.delete(ctx, resource("/admin/cars/%s/images/%s", id, imageID), nil, "Failed to delete car image.")
}

func (a *CarAPI) AddFeature(ctx context.Context, id, feature string) (*Result, error) {
	body := map[string]string{"feature": feature}
	return a.c.post(ctx, resource("/admin/cars/%s/features", id), body, "Failed to add car feature.")
}

func (a *CarAPI) RemoveFeature(ctx context.Context, id, feature string) (*Result, error) {
	body := map[string]string{"feature": feature}
	return a.c.delete(ctx, resource("/admin/cars/%s/features", id), body, "Failed to remove car feature.")
}

// CarForm is the admin car editor payload.
type CarForm struct {
	Car         domain.Car
	ImageSource domain.ImageSource
	// ImageFile is required when ImageSource is local.
	ImageFile *File
}

// Save creates the car when id is empty and updates it otherwise. A url image
// source sends JSON carrying imageUrl; a local source sends multipart data
// with the file under "image". Any other source, including none, is rejected
// before the network.
func (a *CarAPI) Save(ctx context.Context, id string, form CarForm) (*Result, error) {
	method, path, fallback := http.MethodPost, "/admin/cars", "Failed to create car."
	if id != "" {
		method, path, fallback = http.MethodPut, resource("/admin/cars/%s", id), "Failed to update car."
	}

	switch form.ImageSource {
	case domain.ImageSourceURL:
		if method == http.MethodPost {
			return a.Create(ctx, form.Car)
		}
		return a.Update(ctx, id, form.Car)
	case domain.ImageSourceLocal:
	default:
		return nil, a.c.invalid(method, path, []string{domain.ErrUnknownImageSource.Error()}, fallback)
	}

	car := form.Car
	car.ImageURL = ""
	files := []formFile{{field: "image", file: form.ImageFile}}
	return a.c.upload(ctx, method, path, carFields(car), files, fallback)
}

func carFields(car domain.Car) []formField {
	fields := []formField{
		{"brand", car.Manufacturer()},
		{"model", car.Model},
		{"year", strconv.Itoa(car.Year)},
		{"pricePerDay", strconv.FormatFloat(car.PricePerDay, 'f', -1, 64)},
		{"available", strconv.FormatBool(car.Available)},
	}
	if car.Type != "" {
		fields = append(fields, formField{"type", car.Type})
	}
	if car.Color != "" {
		fields = append(fields, formField{"color", car.Color})
	}
	for _, f := range car.Features {
		fields = append(fields, formField{"features", f})
	}
	return fields
}

func searchQuery(s domain.CarSearch) url.Values {
	q := url.Values{}
	set := func(k, v string) {
		if v != "" {
			q.Set(k, v)
		}
	}
	set("q", s.Query)
	set("brand", s.Brand)
	set("type", s.Type)
	if s.MinPrice > 0 {
		q.Set("minPrice", strconv.FormatFloat(s.MinPrice, 'f', -1, 64))
	}
	if s.MaxPrice > 0 {
		q.Set("maxPrice", strconv.FormatFloat(s.MaxPrice, 'f', -1, 64))
	}
	if s.Available != nil {
		q.Set("available", strconv.FormatBool(*s.Available))
	}
	return q
}
