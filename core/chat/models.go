package chat

import (
	"time"

	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/trezcool/shule/core"
)

// Stored fields
const (
	FieldIsGroup      core.Field = "is_group"
	FieldMembers      core.Field = "members"
	FieldConversation core.Field = "conversation"
	FieldOwner        core.Field = "owner"
	FieldContent      core.Field = "content"
)

type Conversation struct {
	ID        primitive.ObjectID   `bson:"_id"`
	Name      string               `bson:"name"`
	IsGroup   bool                 `bson:"is_group"`
	Members   []primitive.ObjectID `bson:"members"` // no duplicates
	CreatedAt time.Time            `bson:"created_at"` // UTC
	UpdatedAt time.Time            `bson:"updated_at"` // UTC
}

func (c Conversation) DocID() primitive.ObjectID { return c.ID }

func (c Conversation) DisplayName() string {
	if c.Name != "" {
		return c.Name
	}
	return c.ID.Hex()
}

func (c Conversation) HasMember(id primitive.ObjectID) bool {
	for _, m := range c.Members {
		if m == id {
			return true
		}
	}
	return false
}

type NewConversation struct {
	Name    string   `json:"name" validate:"max=100"`
	IsGroup bool     `json:"is_group"`
	Members []string `json:"members" validate:"required,min=1"`
}

func (nc *NewConversation) Validate(validate *validator.Validate) error {
	nc.Name = core.CleanString(nc.Name)
	for i := range nc.Members {
		nc.Members[i] = core.CleanString(nc.Members[i])
	}
	return validate.Struct(nc)
}

// UpdateConversation defines what information may be provided to modify an existing Conversation.
// Members are changed through the dedicated add/remove operations.
type UpdateConversation struct {
	Name    *string `json:"name" validate:"omitempty,max=100"`
	IsGroup *bool   `json:"is_group"`
}

func (uc *UpdateConversation) Validate(validate *validator.Validate) error {
	uc.Name = core.CleanStringPtr(uc.Name)
	return validate.Struct(uc)
}

type ConversationView struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	IsGroup   bool      `json:"is_group"`
	Members   []string  `json:"members"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Message struct {
	ID           primitive.ObjectID `bson:"_id"`
	Conversation primitive.ObjectID `bson:"conversation"`
	Owner        primitive.ObjectID `bson:"owner"`
	Content      string             `bson:"content"`
	CreatedAt    time.Time          `bson:"created_at"` // UTC
	UpdatedAt    time.Time          `bson:"updated_at"` // UTC
}

func (m Message) DocID() primitive.ObjectID { return m.ID }
func (m Message) DisplayName() string       { return m.ID.Hex() }

// NewMessage contains information needed to post a Message.
// Owner defaults to the authenticated user.
type NewMessage struct {
	Conversation string `json:"conversation" validate:"required"`
	Owner        string `json:"owner" validate:"required"`
	Content      string `json:"content" validate:"max=5000"`
}

func (nm *NewMessage) Validate(validate *validator.Validate) error {
	nm.Conversation = core.CleanString(nm.Conversation)
	nm.Owner = core.CleanString(nm.Owner)
	return validate.Struct(nm)
}

type UpdateMessage struct {
	Content *string `json:"content" validate:"omitempty,max=5000"`
}

func (um *UpdateMessage) Validate(validate *validator.Validate) error {
	return validate.Struct(um)
}

type MessageView struct {
	ID           string    `json:"id"`
	Conversation string    `json:"conversation"`
	Owner        string    `json:"owner"`
	Content      string    `json:"content"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
