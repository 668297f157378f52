package domain

// Credentials are posted to the login endpoint.
type Credentials struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// Registration is the subset of User the register endpoint reads.
type Registration struct {
	FirstName string `json:"firstName" validate:"required"`
	LastName  string `json:"lastName"  validate:"required"`
	Username  string `json:"username"  validate:"required"`
	Email     string `json:"email"     validate:"required,email"`
}

// ImageFile is an image attached to a multipart form.
type ImageFile struct {
	Name    string
	Content []byte
}

// UserForm carries the fields of the add and update multipart forms.
// CurrentUsername addresses the record on update; it is ignored on add.
type UserForm struct {
	CurrentUsername string     `validate:"omitempty"`
	FirstName       string     `validate:"required"`
	LastName        string     `validate:"required"`
	Username        string     `validate:"required"`
	Email           string     `validate:"required,email"`
	Role            Role       `validate:"required,oneof=ROLE_USER ROLE_MANAGER ROLE_ADMIN ROLE_SUPER_ADMIN"`
	Active          bool
	NotLocked       bool
	ProfileImage    *ImageFile `validate:"omitempty"`
}

// ProfileImageForm replaces the profile image of Username.
type ProfileImageForm struct {
	Username string     `validate:"required"`
	Image    *ImageFile `validate:"required"`
}

// Ack is the backend's acknowledgement of a delete or password reset.
type Ack struct {
	Message string `json:"message"`
}
