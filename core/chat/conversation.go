package chat

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/user"
)

type ConversationService struct {
	conversations core.Collection[Conversation]
	member        core.Ref[user.User]
	validate      *validator.Validate
	deps          []core.Dependent
}

func NewConversationService(
	conversations core.Collection[Conversation],
	users core.Collection[user.User],
	validate *validator.Validate,
	deps ...core.Dependent,
) *ConversationService {
	return &ConversationService{
		conversations: conversations,
		member:        core.NewRef("member", users),
		validate:      validate,
		deps:          deps,
	}
}

// Create starts a conversation between the deduplicated members.
func (svc *ConversationService) Create(ctx context.Context, nc NewConversation) (ConversationView, error) {
	if err := nc.Validate(svc.validate); err != nil {
		return ConversationView{}, err
	}
	members, err := svc.member.ResolveIDs(ctx, nc.Members)
	if err != nil {
		return ConversationView{}, err
	}

	now := time.Now().UTC()
	c, err := core.Insert(ctx, svc.conversations, Conversation{
		ID:        primitive.NewObjectID(),
		Name:      nc.Name,
		IsGroup:   nc.IsGroup,
		Members:   members,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		return ConversationView{}, err
	}
	return svc.format(ctx, c)
}

func (svc *ConversationService) Get(ctx context.Context, id string) (ConversationView, error) {
	c, err := core.Fetch(ctx, svc.conversations, id)
	if err != nil {
		return ConversationView{}, err
	}
	return svc.format(ctx, c)
}

func (svc *ConversationService) List(ctx context.Context) ([]ConversationView, error) {
	conversations, err := svc.conversations.GetMany(ctx, nil)
	if err != nil {
		return nil, errors.Wrap(err, "querying conversations")
	}
	return core.FormatAll(ctx, conversations, svc.format)
}

func (svc *ConversationService) ListByMember(ctx context.Context, memberID string) ([]ConversationView, error) {
	conversations, err := core.ListBy(ctx, svc.conversations, FieldMembers, svc.member, memberID)
	if err != nil {
		return nil, err
	}
	return core.FormatAll(ctx, conversations, svc.format)
}

func (svc *ConversationService) Update(ctx context.Context, id string, uc UpdateConversation) (ConversationView, error) {
	c, err := core.Fetch(ctx, svc.conversations, id)
	if err != nil {
		return ConversationView{}, err
	}
	if err = uc.Validate(svc.validate); err != nil {
		return ConversationView{}, err
	}

	patch := core.NewPatch().SetString(core.FieldName, uc.Name)
	if uc.IsGroup != nil {
		patch.Set(FieldIsGroup, *uc.IsGroup)
	}
	if c, err = core.ApplyPatch(ctx, svc.conversations, c.ID, patch); err != nil {
		return ConversationView{}, err
	}
	return svc.format(ctx, c)
}

func (svc *ConversationService) AddMembers(ctx context.Context, id string, ids core.IDList) (ConversationView, error) {
	if err := ids.Validate(svc.validate); err != nil {
		return ConversationView{}, err
	}
	c, err := core.AddRefs(ctx, svc.conversations, id, FieldMembers, svc.member, ids.IDs)
	if err != nil {
		return ConversationView{}, err
	}
	return svc.format(ctx, c)
}

func (svc *ConversationService) RemoveMembers(ctx context.Context, id string, ids core.IDList) (ConversationView, error) {
	if err := ids.Validate(svc.validate); err != nil {
		return ConversationView{}, err
	}
	c, err := core.RemoveRefs(ctx, svc.conversations, id, FieldMembers, ids.IDs)
	if err != nil {
		return ConversationView{}, err
	}
	return svc.format(ctx, c)
}

// Delete removes a conversation holding no message.
func (svc *ConversationService) Delete(ctx context.Context, id string) (ConversationView, error) {
	c, err := core.Remove(ctx, svc.conversations, id, svc.deps...)
	if err != nil {
		return ConversationView{}, err
	}
	return svc.format(ctx, c)
}

func (svc *ConversationService) format(ctx context.Context, c Conversation) (ConversationView, error) {
	members, err := svc.member.Names(ctx, c.Members)
	if err != nil {
		return ConversationView{}, err
	}
	return ConversationView{
		ID:        c.ID.Hex(),
		Name:      c.Name,
		IsGroup:   c.IsGroup,
		Members:   members,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}, nil
}
