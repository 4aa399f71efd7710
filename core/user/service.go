package user

import (
	"context"
	"net/mail"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/file"
)

type Service struct {
	users    core.Collection[User]
	role     core.Ref[Role]
	files    *file.Service
	mailSvc  core.EmailService
	validate *validator.Validate
	tokens   tokenGenerator
	deps     []core.Dependent
}

func NewService(
	users core.Collection[User],
	roles core.Collection[Role],
	files *file.Service,
	mailSvc core.EmailService,
	validate *validator.Validate,
	conf *core.Config,
	deps ...core.Dependent,
) *Service {
	return &Service{
		users:    users,
		role:     core.NewRef(string(FieldRole), roles),
		files:    files,
		mailSvc:  mailSvc,
		validate: validate,
		tokens:   tokenGenerator{secretKey: conf.SecretKey, timeout: conf.PasswordResetTimeoutDelta},
		deps:     deps,
	}
}

func (svc *Service) checkUniqueness(ctx context.Context, uname, email *string, exclude primitive.ObjectID) error {
	if email != nil {
		if err := core.ValidateUnique(ctx, svc.users, FieldEmail, *email, exclude); err != nil {
			return err
		}
	}
	if uname != nil && *uname != "" {
		if err := core.ValidateUnique(ctx, svc.users, core.FieldUsername, *uname, exclude); err != nil {
			return err
		}
	}
	return nil
}

func (svc *Service) Create(ctx context.Context, nu NewUser) (UserView, error) {
	if err := nu.Validate(svc.validate); err != nil {
		return UserView{}, err
	}
	if err := svc.checkUniqueness(ctx, &nu.Username, &nu.Email, primitive.NilObjectID); err != nil {
		return UserView{}, err
	}
	roleID, err := svc.role.ResolveOptional(ctx, nu.Role)
	if err != nil {
		return UserView{}, err
	}

	now := time.Now().UTC()
	usr := User{
		ID:        primitive.NewObjectID(),
		Name:      nu.Name,
		Username:  nu.Username,
		Email:     nu.Email,
		Phone:     nu.Phone,
		Role:      roleID,
		IsActive:  true,
		Images:    []primitive.ObjectID{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err = usr.SetPassword(nu.Password); err != nil {
		return UserView{}, errors.Wrap(err, "hashing password")
	}
	if usr, err = core.Insert(ctx, svc.users, usr); err != nil {
		return UserView{}, err
	}
	return svc.Format(ctx, usr)
}

func (svc *Service) Get(ctx context.Context, id string) (UserView, error) {
	usr, err := core.Fetch(ctx, svc.users, id)
	if err != nil {
		return UserView{}, err
	}
	return svc.Format(ctx, usr)
}

func (svc *Service) GetByID(ctx context.Context, id string) (User, error) {
	return core.Fetch(ctx, svc.users, id)
}

func (svc *Service) GetByEmail(ctx context.Context, email string) (User, error) {
	return svc.users.FindOne(ctx, core.Where(FieldEmail, core.CleanString(email, true /* lower */)))
}

// GetByEmailOrUsername looks login up as an email first, then as a username.
func (svc *Service) GetByEmailOrUsername(ctx context.Context, login string) (User, error) {
	login = core.CleanString(login, true /* lower */)
	usr, err := svc.users.FindOne(ctx, core.Where(FieldEmail, login))
	if core.IsNotFound(err) {
		return svc.users.FindOne(ctx, core.Where(core.FieldUsername, login))
	}
	return usr, err
}

func (svc *Service) List(ctx context.Context) ([]UserView, error) {
	users, err := svc.users.GetMany(ctx, nil)
	if err != nil {
		return nil, errors.Wrap(err, "querying users")
	}
	return core.FormatAll(ctx, users, svc.Format)
}

func (svc *Service) ListByRole(ctx context.Context, roleID string) ([]UserView, error) {
	users, err := core.ListBy(ctx, svc.users, FieldRole, svc.role, roleID)
	if err != nil {
		return nil, err
	}
	return core.FormatAll(ctx, users, svc.Format)
}

func (svc *Service) Update(ctx context.Context, id string, uu UpdateUser) (UserView, error) {
	usr, err := core.Fetch(ctx, svc.users, id)
	if err != nil {
		return UserView{}, err
	}
	if err = uu.Validate(svc.validate); err != nil {
		return UserView{}, err
	}
	if err = svc.checkUniqueness(ctx, uu.Username, uu.Email, usr.ID); err != nil {
		return UserView{}, err
	}

	patch := core.NewPatch().
		SetString(core.FieldName, uu.Name).
		SetString(FieldEmail, uu.Email).
		SetString(FieldPhone, uu.Phone)
	if uu.Username != nil {
		if *uu.Username == "" {
			patch.Unset(core.FieldUsername)
		} else {
			patch.Set(core.FieldUsername, *uu.Username)
		}
	}
	if uu.IsActive != nil {
		patch.Set(FieldIsActive, *uu.IsActive)
	}
	if _, err = svc.role.Apply(ctx, patch, FieldRole, uu.Role); err != nil {
		return UserView{}, err
	}
	if uu.Password != "" {
		if err = usr.SetPassword(uu.Password); err != nil {
			return UserView{}, errors.Wrap(err, "hashing password")
		}
		patch.Set(FieldPassword, usr.PasswordHash)
	}

	if usr, err = core.ApplyPatch(ctx, svc.users, usr.ID, patch); err != nil {
		return UserView{}, err
	}
	return svc.Format(ctx, usr)
}

func (svc *Service) Delete(ctx context.Context, id string) (UserView, error) {
	usr, err := core.Remove(ctx, svc.users, id, svc.deps...)
	if err != nil {
		return UserView{}, err
	}
	return svc.Format(ctx, usr)
}

// AddImage uploads a profile image and makes it the user's current one.
func (svc *Service) AddImage(ctx context.Context, id string, nf file.NewFile, blob core.Blob) (UserView, error) {
	usr, err := core.Fetch(ctx, svc.users, id)
	if err != nil {
		return UserView{}, err
	}
	f, err := svc.files.Store(ctx, nf, blob)
	if err != nil {
		return UserView{}, err
	}

	images := append([]primitive.ObjectID{f.ID}, usr.Images...)
	if usr, err = core.ApplyPatch(ctx, svc.users, usr.ID, core.NewPatch().Set(FieldImages, images)); err != nil {
		return UserView{}, err
	}
	return svc.Format(ctx, usr)
}

func (svc *Service) SetLastLogin(ctx context.Context, usr User) (User, error) {
	now := time.Now().UTC()
	return core.ApplyPatch(ctx, svc.users, usr.ID, core.NewPatch().Set(FieldLastLogin, now))
}

// RoleName hydrates the role of usr.
func (svc *Service) RoleName(ctx context.Context, usr User) (string, error) {
	return svc.role.Name(ctx, usr.Role)
}

// RequestPasswordReset emails a password reset link to the active user owning email.
func (svc *Service) RequestPasswordReset(ctx context.Context, email string) error {
	usr, err := svc.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	if !usr.IsActive {
		return core.NewError(core.KindNotFound, "user not found: %q", email)
	}

	token, err := svc.tokens.makeToken(usr)
	if err != nil {
		return errors.Wrap(err, "making password reset token")
	}
	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:           []mail.Address{{Name: usr.Name, Address: usr.Email}},
		Subject:      "Password Reset",
		TemplateName: "password_reset",
		TemplateData: map[string]string{
			"Name":  usr.Name,
			"UID":   EncodeUID(usr),
			"Token": token,
		},
	})
	return nil
}

func (svc *Service) ResetPassword(ctx context.Context, data ResetUserPassword) error {
	if err := data.Validate(svc.validate); err != nil {
		return err
	}

	invalidToken := func(err error) error {
		return core.NewValidationError(err, core.FieldError{Field: "token", Error: err.Error()})
	}
	id, err := decodeUID(data.UID)
	if err != nil {
		return invalidToken(errInvalidToken)
	}
	usr, err := svc.users.Get(ctx, id)
	if err != nil {
		if core.IsNotFound(err) {
			return invalidToken(errInvalidToken)
		}
		return errors.Wrap(err, "finding user")
	}
	if err = svc.tokens.verifyToken(usr, data.Token); err != nil {
		return invalidToken(err)
	}

	if err = usr.SetPassword(data.Password); err != nil {
		return errors.Wrap(err, "hashing password")
	}
	_, err = core.ApplyPatch(ctx, svc.users, usr.ID, core.NewPatch().Set(FieldPassword, usr.PasswordHash))
	return err
}

// Format hydrates usr: its role name and the URLs of its images.
func (svc *Service) Format(ctx context.Context, usr User) (UserView, error) {
	roleName, err := svc.role.Name(ctx, usr.Role)
	if err != nil {
		return UserView{}, err
	}
	images, err := svc.files.URLs(ctx, usr.Images)
	if err != nil {
		return UserView{}, err
	}
	var image string
	if len(images) > 0 {
		image = images[0]
	}
	return UserView{
		ID:        usr.ID.Hex(),
		Name:      usr.Name,
		Username:  usr.Username,
		Email:     usr.Email,
		Phone:     usr.Phone,
		Role:      roleName,
		IsActive:  usr.IsActive,
		Image:     image,
		Images:    images,
		CreatedAt: usr.CreatedAt,
		UpdatedAt: usr.UpdatedAt,
		LastLogin: usr.LastLogin,
	}, nil
}
