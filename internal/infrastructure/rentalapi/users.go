package rentalapi

import (
	"context"
	"net/http"
	"net/url"

	"github.com/carrental/storefront/internal/core/domain"
)

// UserAPI covers the caller's own profile and admin user management.
type UserAPI struct{ c *Client }

func (a *UserAPI) Profile(ctx context.Context) (*Result, error) {
	return a.c.get(ctx, "/user/profile", nil, "Failed to fetch user profile.")
}

func (a *UserAPI) UpdateProfile(ctx context.Context, p domain.ProfileUpdate) (*Result, error) {
	return a.c.put(ctx, "/user/profile", p, "Failed to update profile.")
}

func (a *UserAPI) UploadAvatar(ctx context.Context, img *File) (*Result, error) {
	files := []formFile{{field: "avatar", file: img}}
	return a.c.upload(ctx, http.MethodPost, "/user/avatar", nil, files, "Failed to upload avatar.")
}

func (a *UserAPI) ChangePassword(ctx context.Context, p domain.PasswordChange) (*Result, error) {
	return a.c.put(ctx, "/user/change-password", p, "Failed to change password.")
}

func (a *UserAPI) SubmitEditRequest(ctx context.Context, req *domain.EditRequest) (*Result, error) {
	return a.c.post(ctx, "/user/profile/edit-request", req, "Failed to submit edit request.")
}

func (a *UserAPI) EditRequests(ctx context.Context) (*Result, error) {
	return a.c.get(ctx, "/user/profile/edit-requests", nil, "Failed to fetch edit requests.")
}

func (a *UserAPI) List(ctx context.Context, params url.Values) (*Result, error) {
	return a.c.get(ctx, "/admin/users", params, "Failed to fetch users.")
}

func (a *UserAPI) Get(ctx context.Context, id string) (*Result, error) {
	return a.c.get(ctx, resource("/admin/users/%s", id), nil, "Failed to fetch user details.")
}

func (a *UserAPI) Create(ctx context.Context, req domain.SignupRequest) (*Result, error) {
	return a.c.post(ctx, "/admin/users", req, "Failed to create user.")
}

func (a *UserAPI) Update(ctx context.Context, id string, u domain.User) (*Result, error) {
	return a.c.put(ctx, resource("/admin/users/%s", id), u, "Failed to update user.")
}

func (a *UserAPI) Delete(ctx context.Context, id string) (*Result, error) {
	return a.c.delete(ctx, resource("/admin/users/%s", id), nil, "Failed to delete user.")
}

func (a *UserAPI) ToggleStatus(ctx context.Context, id string) (*Result, error) {
	return a.c.patch(ctx, resource("/admin/users/%s/status", id), nil, "Failed to update user status.")
}

func (a *UserAPI) UpdateRoles(ctx context.Context, id string, roles []string) (*Result, error) {
	body := map[string][]string{"roles": roles}
	return a.c.patch(ctx, resource("/admin/users/%s/roles", id), body, "Failed to update user roles.")
}

func (a *UserAPI) PendingEditRequests(ctx context.Context) (*Result, error) {
	return a.c.get(ctx, "/admin/profile-edit-requests", nil, "Failed to fetch pending edit requests.")
}

func (a *UserAPI) ApproveEditRequest(ctx context.Context, id string) (*Result, error) {
	return a.c.patch(ctx, resource("/admin/profile-edit-requests/%s/approve", id), nil, "Failed to approve edit request.")
}

func (a *UserAPI) RejectEditRequest(ctx context.Context, id, reason string) (*Result, error) {
	body := map[string]string{"reason": reason}
	return a.c.patch(ctx, resource("/admin/profile-edit-requests/%s/reject", id), body, "Failed to reject edit request.")
}

func (a *UserAPI) Stats(ctx context.Context) (*Result, error) {
	return a.c.get(ctx, "/admin/users/stats", nil, "Failed to fetch user statistics.")
}

func (a *UserAPI) Active(ctx context.Context) (*Result, error) {
	return a.c.get(ctx, "/admin/users/active", nil, "Failed to fetch active users.")
}
