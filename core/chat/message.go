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

type MessageService struct {
	messages     core.Collection[Message]
	conversation core.Ref[Conversation]
	owner        core.Ref[user.User]
	validate     *validator.Validate
}

func NewMessageService(
	messages core.Collection[Message],
	conversations core.Collection[Conversation],
	users core.Collection[user.User],
	validate *validator.Validate,
) *MessageService {
	return &MessageService{
		messages:     messages,
		conversation: core.NewRef(string(FieldConversation), conversations),
		owner:        core.NewRef(string(FieldOwner), users),
		validate:     validate,
	}
}

// Create posts a message. Its owner must be a member of the conversation.
func (svc *MessageService) Create(ctx context.Context, nm NewMessage) (MessageView, error) {
	if err := nm.Validate(svc.validate); err != nil {
		return MessageView{}, err
	}
	conv, err := svc.conversation.Resolve(ctx, nm.Conversation)
	if err != nil {
		return MessageView{}, err
	}
	ownerID, err := svc.owner.ResolveID(ctx, nm.Owner)
	if err != nil {
		return MessageView{}, err
	}
	if !conv.HasMember(ownerID) {
		return MessageView{}, core.NewValidationError(nil, core.FieldError{
			Field: string(FieldOwner),
			Error: "owner is not a member of the conversation",
		})
	}

	now := time.Now().UTC()
	m, err := core.Insert(ctx, svc.messages, Message{
		ID:           primitive.NewObjectID(),
		Conversation: conv.ID,
		Owner:        ownerID,
		Content:      nm.Content,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		return MessageView{}, err
	}
	return svc.format(ctx, m)
}

func (svc *MessageService) Get(ctx context.Context, id string) (MessageView, error) {
	m, err := core.Fetch(ctx, svc.messages, id)
	if err != nil {
		return MessageView{}, err
	}
	return svc.format(ctx, m)
}

func (svc *MessageService) List(ctx context.Context) ([]MessageView, error) {
	messages, err := svc.messages.GetMany(ctx, nil)
	if err != nil {
		return nil, errors.Wrap(err, "querying messages")
	}
	return core.FormatAll(ctx, messages, svc.format)
}

func (svc *MessageService) ListByConversation(ctx context.Context, conversationID string) ([]MessageView, error) {
	messages, err := core.ListBy(ctx, svc.messages, FieldConversation, svc.conversation, conversationID)
	if err != nil {
		return nil, err
	}
	return core.FormatAll(ctx, messages, svc.format)
}

func (svc *MessageService) Update(ctx context.Context, id string, um UpdateMessage) (MessageView, error) {
	m, err := core.Fetch(ctx, svc.messages, id)
	if err != nil {
		return MessageView{}, err
	}
	if err = um.Validate(svc.validate); err != nil {
		return MessageView{}, err
	}
	if m, err = core.ApplyPatch(ctx, svc.messages, m.ID, core.NewPatch().SetString(FieldContent, um.Content)); err != nil {
		return MessageView{}, err
	}
	return svc.format(ctx, m)
}

func (svc *MessageService) Delete(ctx context.Context, id string) (MessageView, error) {
	m, err := core.Remove(ctx, svc.messages, id)
	if err != nil {
		return MessageView{}, err
	}
	return svc.format(ctx, m)
}

func (svc *MessageService) format(ctx context.Context, m Message) (MessageView, error) {
	conv, err := svc.conversation.Name(ctx, &m.Conversation)
	if err != nil {
		return MessageView{}, err
	}
	owner, err := svc.owner.Name(ctx, &m.Owner)
	if err != nil {
		return MessageView{}, err
	}
	return MessageView{
		ID:           m.ID.Hex(),
		Conversation: conv,
		Owner:        owner,
		Content:      m.Content,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}, nil
}
