package echoapi

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/trezcool/shule/core"
)

func TestConversations(t *testing.T) {
	env := setup(t)
	alice := env.createUser(t, "Alice", "alice", "alice@test.cd", false)
	bob := env.createUser(t, "Bob", "bob", "bob@test.cd", false)
	carol := env.createUser(t, "Carol", "carol", "carol@test.cd", false)
	token := env.token(t, alice)

	conv := env.create(t, "/api/conversation", token, map[string]interface{}{
		"name":    "Homework",
		"members": []string{alice.ID.Hex(), bob.ID.Hex(), alice.ID.Hex(), " " + bob.ID.Hex() + " "},
	})
	convID := conv["id"].(string)
	assert.ElementsMatch(t, []interface{}{"alice", "bob"}, conv["members"], "members are deduplicated")

	membersAre := func(want ...interface{}) func(t *testing.T, data interface{}) {
		return func(t *testing.T, data interface{}) {
			assert.ElementsMatch(t, want, data.(map[string]interface{})["members"])
		}
	}

	env.run(t, []httpTest{
		{
			name: "no members", method: http.MethodPost, path: "/api/conversation", token: token,
			body:     map[string]interface{}{"name": "Empty", "members": []string{}},
			wantCode: http.StatusBadRequest, wantErr: string(core.KindValidation),
		},
		{
			name: "unknown member", method: http.MethodPost, path: "/api/conversation", token: token,
			body:     map[string]interface{}{"members": []string{"5f1b0c2e9d3e4a0001a1b2c3"}},
			wantCode: http.StatusBadRequest, wantErr: string(core.KindNotFound),
		},
		{
			name: "add members", method: http.MethodPost, path: "/api/conversation/" + convID + "/members", token: token,
			body:  map[string]interface{}{"ids": []string{bob.ID.Hex(), carol.ID.Hex()}},
			check: membersAre("alice", "bob", "carol"),
		},
		{name: "conversations by member", path: "/api/conversation/member/" + carol.ID.Hex(), token: token, check: hasLen(1)},
		{
			name: "remove members", method: http.MethodDelete, path: "/api/conversation/" + convID + "/members", token: token,
			body:  map[string]interface{}{"ids": []string{carol.ID.Hex()}},
			check: membersAre("alice", "bob"),
		},
		{
			name: "message from the authenticated user", method: http.MethodPost, path: "/api/message", token: token,
			body:     map[string]interface{}{"conversation": convID, "content": "hello"},
			wantCode: http.StatusCreated,
			check:    hasFields(map[string]interface{}{"owner": "alice", "content": "hello"}),
		},
		{
			name: "message from a non member", method: http.MethodPost, path: "/api/message", token: env.token(t, carol),
			body:     map[string]interface{}{"conversation": convID, "content": "let me in"},
			wantCode: http.StatusBadRequest, wantErr: string(core.KindValidation),
		},
		{name: "messages by conversation", path: "/api/message/conversation/" + convID, token: token, check: hasLen(1)},
		{
			name: "conversation holding messages", method: http.MethodDelete, path: "/api/conversation/" + convID,
			token: token, wantCode: http.StatusBadRequest, wantErr: string(core.KindDependencyExists),
		},
	})
}
