package echoapi

import (
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/shule/core/chat"
)

func registerChatAPI(
	g *echo.Group,
	jwt echo.MiddlewareFunc,
	auth *authenticator,
	conversations *chat.ConversationService,
	messages *chat.MessageService,
) {
	cg := g.Group("/conversation", jwt)
	registerCRUD[chat.NewConversation, chat.UpdateConversation, chat.ConversationView](cg, conversations)
	cg.GET("/member/:id", idHandler(conversations.ListByMember))
	registerRefs(cg, "members", conversations.AddMembers, conversations.RemoveMembers)

	mg := g.Group("/message", jwt)
	mg.POST("", createHandler(messages.Create, func(ctx echo.Context, nm *chat.NewMessage) error {
		// messages are sent by the authenticated user unless told otherwise
		if nm.Owner == "" {
			claims, err := auth.contextClaims(ctx)
			if err != nil {
				return errors.Wrap(err, "getting context claims")
			}
			nm.Owner = claims.Subject
		}
		return nil
	}))
	mg.GET("", listHandler(messages.List))
	mg.GET("/:id", idHandler(messages.Get))
	mg.PUT("/:id", updateHandler(messages.Update))
	mg.DELETE("/:id", idHandler(messages.Delete))
	mg.GET("/conversation/:id", idHandler(messages.ListByConversation))
}
