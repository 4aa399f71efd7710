package request

import (
	"context"
	"net/mail"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/trezcool/shule/core"
)

type Service struct {
	requests core.Collection[Request]
	role     core.Ref[Type]
	mailSvc  core.EmailService
	admins   []mail.Address
	validate *validator.Validate
}

func NewService(
	requests core.Collection[Request],
	types core.Collection[Type],
	mailSvc core.EmailService,
	validate *validator.Validate,
	conf *core.Config,
) *Service {
	var admins []mail.Address
	if conf.AdminEmail.Address != "" {
		admins = append(admins, conf.AdminEmail)
	}
	return &Service{
		requests: requests,
		role:     core.NewRef(string(FieldRole), types),
		mailSvc:  mailSvc,
		admins:   admins,
		validate: validate,
	}
}

// Create records a request and notifies the admins by email.
func (svc *Service) Create(ctx context.Context, nr NewRequest) (RequestView, error) {
	if err := nr.Validate(svc.validate); err != nil {
		return RequestView{}, err
	}
	rt, err := svc.role.Resolve(ctx, nr.Role)
	if err != nil {
		return RequestView{}, err
	}

	now := time.Now().UTC()
	r, err := core.Insert(ctx, svc.requests, Request{
		ID:        primitive.NewObjectID(),
		Name:      nr.Name,
		Email:     nr.Email,
		Phone:     nr.Phone,
		Message:   nr.Message,
		Role:      rt.ID,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		return RequestView{}, err
	}

	if len(svc.admins) > 0 {
		svc.mailSvc.SendMessages(&core.EmailMessage{
			To:           svc.admins,
			Subject:      "New " + rt.Role + " request",
			TemplateName: "request_received",
			TemplateData: map[string]string{
				"Type":    rt.Role,
				"Name":    r.Name,
				"Email":   r.Email,
				"Phone":   r.Phone,
				"Message": r.Message,
			},
		})
	}
	return svc.format(ctx, r)
}

func (svc *Service) Get(ctx context.Context, id string) (RequestView, error) {
	r, err := core.Fetch(ctx, svc.requests, id)
	if err != nil {
		return RequestView{}, err
	}
	return svc.format(ctx, r)
}

func (svc *Service) List(ctx context.Context) ([]RequestView, error) {
	requests, err := svc.requests.GetMany(ctx, nil)
	if err != nil {
		return nil, errors.Wrap(err, "querying requests")
	}
	return core.FormatAll(ctx, requests, svc.format)
}

func (svc *Service) ListByType(ctx context.Context, typeID string) ([]RequestView, error) {
	requests, err := core.ListBy(ctx, svc.requests, FieldRole, svc.role, typeID)
	if err != nil {
		return nil, err
	}
	return core.FormatAll(ctx, requests, svc.format)
}

func (svc *Service) Update(ctx context.Context, id string, ur UpdateRequest) (RequestView, error) {
	r, err := core.Fetch(ctx, svc.requests, id)
	if err != nil {
		return RequestView{}, err
	}
	if err = ur.Validate(svc.validate); err != nil {
		return RequestView{}, err
	}

	patch := core.NewPatch().
		SetString(core.FieldName, ur.Name).
		SetString(FieldEmail, ur.Email).
		SetString(FieldPhone, ur.Phone).
		SetString(FieldMessage, ur.Message)
	if _, err = svc.role.Apply(ctx, patch, FieldRole, ur.Role); err != nil {
		return RequestView{}, err
	}
	if r, err = core.ApplyPatch(ctx, svc.requests, r.ID, patch); err != nil {
		return RequestView{}, err
	}
	return svc.format(ctx, r)
}

func (svc *Service) Delete(ctx context.Context, id string) (RequestView, error) {
	r, err := core.Remove(ctx, svc.requests, id)
	if err != nil {
		return RequestView{}, err
	}
	return svc.format(ctx, r)
}

func (svc *Service) format(ctx context.Context, r Request) (RequestView, error) {
	role, err := svc.role.Name(ctx, &r.Role)
	if err != nil {
		return RequestView{}, err
	}
	return RequestView{
		ID:        r.ID.Hex(),
		Name:      r.Name,
		Email:     r.Email,
		Phone:     r.Phone,
		Message:   r.Message,
		Role:      role,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}, nil
}
