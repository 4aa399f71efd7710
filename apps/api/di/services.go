package di

import (
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/academics"
	"github.com/trezcool/shule/core/chat"
	"github.com/trezcool/shule/core/class"
	"github.com/trezcool/shule/core/file"
	"github.com/trezcool/shule/core/request"
	"github.com/trezcool/shule/core/school"
	"github.com/trezcool/shule/core/subject"
	"github.com/trezcool/shule/core/user"
)

// Services holds one service per entity.
type Services struct {
	User          *user.Service
	Role          *user.RoleService
	School        *school.Service
	Education     *academics.EducationService
	Sector        *academics.SectorService
	Trade         *academics.TradeService
	ClassRoomType *academics.ClassRoomTypeService
	ClassRoom     *academics.ClassRoomService
	Class         *class.Service
	ClassGroup    *class.GroupService
	SubjectType   *subject.TypeService
	Subject       *subject.Service
	FileType      *file.TypeService
	File          *file.Service
	Conversation  *chat.ConversationService
	Message       *chat.MessageService
	RequestType   *request.TypeService
	Request       *request.Service
}

// NewServices builds the services over stores. Each service is given the references
// protecting its documents from deletion.
func NewServices(
	st *Stores,
	blobs core.BlobStore,
	mailSvc core.EmailService,
	validate *validator.Validate,
	conf *core.Config,
) *Services {
	files := file.NewService(st.Files, st.FileTypes, blobs, validate,
		core.DependentOf(st.ClassRooms, academics.FieldSymbol),
		core.DependentOf(st.Schools, school.FieldLogo),
		core.DependentOf(st.Subjects, subject.FieldBooks),
		core.DependentOf(st.Users, user.FieldImages),
	)

	return &Services{
		User: user.NewService(st.Users, st.Roles, files, mailSvc, validate, conf,
			core.DependentOf(st.Schools, school.FieldOwner),
			core.DependentOf(st.Classes, class.FieldTeacher),
			core.DependentOf(st.Classes, class.FieldTeachers),
			core.DependentOf(st.Classes, class.FieldStudents),
			core.DependentOf(st.ClassGroups, class.FieldStudents),
			core.DependentOf(st.Conversations, chat.FieldMembers),
			core.DependentOf(st.Messages, chat.FieldOwner),
		),
		Role: user.NewRoleService(st.Roles, validate,
			core.DependentOf(st.Users, user.FieldRole),
		),
		School: school.NewService(st.Schools, st.Users, st.Files, files, validate,
			core.DependentOf(st.Classes, class.FieldSchool),
		),
		Education: academics.NewEducationService(st.Educations, validate,
			core.DependentOf(st.Sectors, academics.FieldEducation),
		),
		Sector: academics.NewSectorService(st.Sectors, st.Educations, validate,
			core.DependentOf(st.Trades, academics.FieldSector),
			core.DependentOf(st.ClassRooms, academics.FieldSector),
		),
		Trade: academics.NewTradeService(st.Trades, st.Sectors, validate,
			core.DependentOf(st.ClassRooms, academics.FieldTrade),
		),
		ClassRoomType: academics.NewClassRoomTypeService(st.ClassRoomTypes, validate,
			core.DependentOf(st.ClassRooms, academics.FieldClassRoomType),
		),
		ClassRoom: academics.NewClassRoomService(
			st.ClassRooms, st.ClassRoomTypes, st.Trades, st.Sectors, st.Files, files, validate,
			core.DependentOf(st.Subjects, subject.FieldClassRoom),
		),
		Class: class.NewService(st.Classes, st.Schools, st.Users, validate,
			core.DependentOf(st.ClassGroups, class.FieldClass),
		),
		ClassGroup: class.NewGroupService(st.ClassGroups, st.Classes, st.Users, validate),
		SubjectType: subject.NewTypeService(st.SubjectTypes, validate,
			core.DependentOf(st.Subjects, subject.FieldSubjectType),
		),
		Subject: subject.NewService(st.Subjects, st.ClassRooms, st.SubjectTypes, st.Files, files, validate),
		FileType: file.NewTypeService(st.FileTypes, validate,
			core.DependentOf(st.Files, file.FieldType),
		),
		File: files,
		Conversation: chat.NewConversationService(st.Conversations, st.Users, validate,
			core.DependentOf(st.Messages, chat.FieldConversation),
		),
		Message: chat.NewMessageService(st.Messages, st.Conversations, st.Users, validate),
		RequestType: request.NewTypeService(st.RequestTypes, validate,
			core.DependentOf(st.Requests, request.FieldRole),
		),
		Request: request.NewService(st.Requests, st.RequestTypes, mailSvc, validate, conf),
	}
}
