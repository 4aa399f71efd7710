// Package di wires the collections and services of the API together.
package di

import (
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/academics"
	"github.com/trezcool/shule/core/chat"
	"github.com/trezcool/shule/core/class"
	"github.com/trezcool/shule/core/file"
	"github.com/trezcool/shule/core/request"
	"github.com/trezcool/shule/core/school"
	"github.com/trezcool/shule/core/subject"
	"github.com/trezcool/shule/core/user"
	"github.com/trezcool/shule/storage/database"
	inmemdb "github.com/trezcool/shule/storage/database/inmem"
	mongostore "github.com/trezcool/shule/storage/database/mongo"
)

// Stores holds one collection per entity.
type Stores struct {
	Users          core.Collection[user.User]
	Roles          core.Collection[user.Role]
	Schools        core.Collection[school.School]
	Educations     core.Collection[academics.Education]
	Sectors        core.Collection[academics.Sector]
	Trades         core.Collection[academics.Trade]
	ClassRoomTypes core.Collection[academics.ClassRoomType]
	ClassRooms     core.Collection[academics.ClassRoom]
	Classes        core.Collection[class.Class]
	ClassGroups    core.Collection[class.Group]
	SubjectTypes   core.Collection[subject.Type]
	Subjects       core.Collection[subject.Subject]
	FileTypes      core.Collection[file.FileType]
	Files          core.Collection[file.File]
	Conversations  core.Collection[chat.Conversation]
	Messages       core.Collection[chat.Message]
	RequestTypes   core.Collection[request.Type]
	Requests       core.Collection[request.Request]
}

// Entity names, as they appear in error messages.
const (
	entityUser          = "user"
	entityRole          = "role"
	entitySchool        = "school"
	entityEducation     = "education"
	entitySector        = "sector"
	entityTrade         = "trade"
	entityClassRoomType = "classroom type"
	entityClassRoom     = "classroom"
	entityClass         = "class"
	entityClassGroup    = "class group"
	entitySubjectType   = "subject type"
	entitySubject       = "subject"
	entityFileType      = "file type"
	entityFile          = "file"
	entityConversation  = "conversation"
	entityMessage       = "message"
	entityRequestType   = "request type"
	entityRequest       = "request"
)

func NewMongoStores(db *mongo.Database) *Stores {
	return &Stores{
		Users:          mongostore.NewCollection[user.User](db, database.Users, entityUser),
		Roles:          mongostore.NewCollection[user.Role](db, database.Roles, entityRole),
		Schools:        mongostore.NewCollection[school.School](db, database.Schools, entitySchool),
		Educations:     mongostore.NewCollection[academics.Education](db, database.Educations, entityEducation),
		Sectors:        mongostore.NewCollection[academics.Sector](db, database.Sectors, entitySector),
		Trades:         mongostore.NewCollection[academics.Trade](db, database.Trades, entityTrade),
		ClassRoomTypes: mongostore.NewCollection[academics.ClassRoomType](db, database.ClassRoomTypes, entityClassRoomType),
		ClassRooms:     mongostore.NewCollection[academics.ClassRoom](db, database.ClassRooms, entityClassRoom),
		Classes:        mongostore.NewCollection[class.Class](db, database.Classes, entityClass),
		ClassGroups:    mongostore.NewCollection[class.Group](db, database.ClassGroups, entityClassGroup),
		SubjectTypes:   mongostore.NewCollection[subject.Type](db, database.SubjectTypes, entitySubjectType),
		Subjects:       mongostore.NewCollection[subject.Subject](db, database.Subjects, entitySubject),
		FileTypes:      mongostore.NewCollection[file.FileType](db, database.FileTypes, entityFileType),
		Files:          mongostore.NewCollection[file.File](db, database.Files, entityFile),
		Conversations:  mongostore.NewCollection[chat.Conversation](db, database.Conversations, entityConversation),
		Messages:       mongostore.NewCollection[chat.Message](db, database.Messages, entityMessage),
		RequestTypes:   mongostore.NewCollection[request.Type](db, database.RequestTypes, entityRequestType),
		Requests:       mongostore.NewCollection[request.Request](db, database.Requests, entityRequest),
	}
}

// NewMemoryStores returns empty in-memory stores enforcing the same unique fields as the database indexes.
func NewMemoryStores() *Stores {
	return &Stores{
		Users:          inmemdb.NewCollection[user.User](entityUser, uniqueFields(database.Users)...),
		Roles:          inmemdb.NewCollection[user.Role](entityRole, uniqueFields(database.Roles)...),
		Schools:        inmemdb.NewCollection[school.School](entitySchool, uniqueFields(database.Schools)...),
		Educations:     inmemdb.NewCollection[academics.Education](entityEducation, uniqueFields(database.Educations)...),
		Sectors:        inmemdb.NewCollection[academics.Sector](entitySector, uniqueFields(database.Sectors)...),
		Trades:         inmemdb.NewCollection[academics.Trade](entityTrade, uniqueFields(database.Trades)...),
		ClassRoomTypes: inmemdb.NewCollection[academics.ClassRoomType](entityClassRoomType, uniqueFields(database.ClassRoomTypes)...),
		ClassRooms:     inmemdb.NewCollection[academics.ClassRoom](entityClassRoom, uniqueFields(database.ClassRooms)...),
		Classes:        inmemdb.NewCollection[class.Class](entityClass, uniqueFields(database.Classes)...),
		ClassGroups:    inmemdb.NewCollection[class.Group](entityClassGroup, uniqueFields(database.ClassGroups)...),
		SubjectTypes:   inmemdb.NewCollection[subject.Type](entitySubjectType, uniqueFields(database.SubjectTypes)...),
		Subjects:       inmemdb.NewCollection[subject.Subject](entitySubject, uniqueFields(database.Subjects)...),
		FileTypes:      inmemdb.NewCollection[file.FileType](entityFileType, uniqueFields(database.FileTypes)...),
		Files:          inmemdb.NewCollection[file.File](entityFile, uniqueFields(database.Files)...),
		Conversations:  inmemdb.NewCollection[chat.Conversation](entityConversation, uniqueFields(database.Conversations)...),
		Messages:       inmemdb.NewCollection[chat.Message](entityMessage, uniqueFields(database.Messages)...),
		RequestTypes:   inmemdb.NewCollection[request.Type](entityRequestType, uniqueFields(database.RequestTypes)...),
		Requests:       inmemdb.NewCollection[request.Request](entityRequest, uniqueFields(database.Requests)...),
	}
}

func uniqueFields(collection string) []core.Field {
	var fields []core.Field
	for _, idx := range database.Indexes {
		if idx.Collection == collection && idx.Unique {
			fields = append(fields, core.Field(idx.Field))
		}
	}
	return fields
}
