package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/usermgmt/admin-console/internal/api/metrics"
	"github.com/usermgmt/admin-console/internal/core/controller"
	"github.com/usermgmt/admin-console/internal/core/domain"
)

type UsersHandler struct {
	users *controller.UserController
}

func NewUsersHandler(users *controller.UserController) *UsersHandler {
	return &UsersHandler{users: users}
}

type profileImageResult struct {
	User     *domain.User `json:"user"`
	Progress int          `json:"progress"`
}

// List returns the directory. With refresh=true it is reloaded from the
// backend first; otherwise the cached snapshot is searched offline.
//
// @Summary      List or search users
// @Tags         users
// @Produce      json
// @Param        search   query     string  false  "Case-insensitive search term"
// @Param        refresh  query     bool    false  "Reload from the backend first"
// @Success      200      {object}  Response{data=[]domain.User}
// @Failure      401      {object}  Response
// @Failure      502      {object}  Response
// @Router       /api/users [get]
func (h *UsersHandler) List(c echo.Context) error {
	k := newCall(c)

	refresh, _ := strconv.ParseBool(c.QueryParam("refresh"))
	if refresh {
		if _, err := h.users.GetUsers(k.ctx, true); err != nil {
			return k.fail(err)
		}
	}

	users, err := h.users.Search(k.ctx, c.QueryParam("search"))
	if err != nil {
		return k.fail(err)
	}
	if users == nil {
		users = []domain.User{}
	}
	return k.ok(c, http.StatusOK, "", users)
}

// Create adds a user from a multipart form.
//
// @Summary      Add a user
// @Tags         users
// @Accept       multipart/form-data
// @Produce      json
// @Param        firstName     formData  string  true   "First name"
// @Param        lastName      formData  string  true   "Last name"
// @Param        username      formData  string  true   "Username"
// @Param        email         formData  string  true   "Email"
// @Param        role          formData  string  true   "Role"
// @Param        isActive      formData  bool    false  "Active"
// @Param        isNotLocked   formData  bool    false  "Not locked"
// @Param        profileImage  formData  file    false  "Profile image"
// @Success      201  {object}  Response{data=domain.User}
// @Failure      422  {object}  Response
// @Router       /api/users [post]
func (h *UsersHandler) Create(c echo.Context) error {
	form, err := userForm(c)
	if err != nil {
		return invalid(err)
	}

	k := newCall(c)
	user, err := h.users.AddUser(k.ctx, form)
	if err != nil {
		return k.fail(err)
	}
	return k.ok(c, http.StatusCreated, "", user)
}

// Update saves a user addressed by currentUsername.
//
// @Summary      Update a user
// @Tags         users
// @Accept       multipart/form-data
// @Produce      json
// @Param        currentUsername  formData  string  true   "Username of the record to update"
// @Param        firstName        formData  string  true   "First name"
// @Param        lastName         formData  string  true   "Last name"
// @Param        username         formData  string  true   "Username"
// @Param        email            formData  string  true   "Email"
// @Param        role             formData  string  true   "Role"
// @Param        isActive         formData  bool    false  "Active"
// @Param        isNotLocked      formData  bool    false  "Not locked"
// @Param        profileImage     formData  file    false  "Profile image"
// @Success      200  {object}  Response{data=domain.User}
// @Failure      422  {object}  Response
// @Router       /api/users/update [post]
func (h *UsersHandler) Update(c echo.Context) error {
	form, err := userForm(c)
	if err != nil {
		return invalid(err)
	}

	k := newCall(c)
	user, err := h.users.UpdateUser(k.ctx, form)
	if err != nil {
		return k.fail(err)
	}
	return k.ok(c, http.StatusOK, "", user)
}

// Delete removes a user. Admin role required.
//
// @Summary      Delete a user
// @Tags         users
// @Produce      json
// @Param        username  path      string  true  "Username"
// @Success      200       {object}  Response{data=domain.Ack}
// @Failure      403       {object}  Response
// @Router       /api/users/{username} [delete]
func (h *UsersHandler) Delete(c echo.Context) error {
	k := newCall(c)
	ack, err := h.users.DeleteUser(k.ctx, c.Param("username"))
	if err != nil {
		return k.fail(err)
	}
	return k.ok(c, http.StatusOK, "", ack)
}

// ResetPassword asks the backend to mail a new password.
//
// @Summary      Reset a password
// @Tags         users
// @Produce      json
// @Param        email  path      string  true  "Email"
// @Success      200    {object}  Response{data=domain.Ack}
// @Failure      422    {object}  Response
// @Router       /api/users/reset-password/{email} [post]
func (h *UsersHandler) ResetPassword(c echo.Context) error {
	k := newCall(c)
	ack, err := h.users.ResetPassword(k.ctx, c.Param("email"))
	if err != nil {
		return k.fail(err)
	}
	return k.ok(c, http.StatusOK, "", ack)
}

// ProfileImage replaces a user's profile image.
//
// @Summary      Update a profile image
// @Tags         users
// @Accept       multipart/form-data
// @Produce      json
// @Param        username      formData  string  true  "Username"
// @Param        profileImage  formData  file    true  "Profile image"
// @Success      200  {object}  Response{data=profileImageResult}
// @Failure      422  {object}  Response
// @Router       /api/users/profile-image [post]
func (h *UsersHandler) ProfileImage(c echo.Context) error {
	img, err := formImage(c, "profileImage")
	if err != nil {
		return invalid(err)
	}

	k := newCall(c)
	user, err := h.users.UpdateProfileImage(k.ctx, domain.ProfileImageForm{
		Username: c.FormValue("username"),
		Image:    img,
	})
	if err != nil {
		metrics.ProfileImageUploadsTotal.WithLabelValues("error").Inc()
		return k.fail(err)
	}
	metrics.ProfileImageUploadsTotal.WithLabelValues("success").Inc()
	return k.ok(c, http.StatusOK, "", profileImageResult{User: user, Progress: h.users.State().UploadProgress})
}

func userForm(c echo.Context) (domain.UserForm, error) {
	img, err := formImage(c, "profileImage")
	if err != nil {
		return domain.UserForm{}, errors.New("unreadable profile image: " + err.Error())
	}
	return domain.UserForm{
		CurrentUsername: c.FormValue("currentUsername"),
		FirstName:       c.FormValue("firstName"),
		LastName:        c.FormValue("lastName"),
		Username:        c.FormValue("username"),
		Email:           c.FormValue("email"),
		Role:            formRole(c.FormValue("role")),
		Active:          formBool(c.FormValue("isActive")),
		NotLocked:       formBool(c.FormValue("isNotLocked")),
		ProfileImage:    img,
	}, nil
}
