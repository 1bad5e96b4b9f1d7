package api

import (
	"context"
	"io"

	"github.com/falconilham/gym-nexus-sub000/internal/auth"
	"github.com/falconilham/gym-nexus-sub000/internal/models"
	"github.com/falconilham/gym-nexus-sub000/internal/repository"
	"github.com/falconilham/gym-nexus-sub000/internal/service"
)

type TokenParser interface {
	Parse(token string) (*auth.Claims, error)
}

type GymService interface {
	Create(ctx context.Context, dto service.CreateGymDTO) (*models.Gym, error)
	List(ctx context.Context, f repository.GymFilter) (service.PageResult[models.Gym], error)
	Get(ctx context.Context, id uint) (*models.Gym, error)
	Update(ctx context.Context, id uint, dto service.UpdateGymDTO) (*models.Gym, error)
	Delete(ctx context.Context, id uint) error
	UploadLogo(ctx context.Context, id uint, filename string, size int64, r io.Reader) (*models.Gym, error)
}

type AdminService interface {
	Login(ctx context.Context, dto service.LoginDTO) (*service.Session[models.Admin], error)
	Get(ctx context.Context, id uint) (*models.Admin, error)
	GetInGym(ctx context.Context, gymID, id uint) (*models.Admin, error)
	List(ctx context.Context, gymID uint, p repository.Page) (service.PageResult[models.Admin], error)
	Create(ctx context.Context, gymID uint, dto service.CreateAdminDTO) (*models.Admin, error)
	Update(ctx context.Context, gymID, id uint, dto service.UpdateAdminDTO) (*models.Admin, error)
	Delete(ctx context.Context, gymID, id uint) error
}

type UserService interface {
	Register(ctx context.Context, dto service.RegisterUserDTO) (*service.Session[models.User], error)
	Login(ctx context.Context, dto service.LoginDTO) (*service.Session[models.User], error)
	Get(ctx context.Context, id uint) (*models.User, error)
	UpdateProfile(ctx context.Context, id uint, dto service.UpdateProfileDTO) (*models.User, error)
	IssueTelegramLinkCode(ctx context.Context, id uint) (*service.LinkCode, error)
}

type MemberService interface {
	Create(ctx context.Context, gymID uint, dto service.CreateMemberDTO) (*models.Member, error)
	List(ctx context.Context, gymID uint, f repository.MemberFilter) (service.PageResult[models.Member], error)
	Get(ctx context.Context, gymID, id uint) (*models.Member, error)
	Update(ctx context.Context, gymID, id uint, dto service.UpdateMemberDTO) (*models.Member, error)
	Delete(ctx context.Context, gymID, id uint) error
	Suspend(ctx context.Context, gymID, id uint, dto service.SuspendMemberDTO) (*models.Member, error)
	Reactivate(ctx context.Context, gymID, id uint) (*models.Member, error)
	Renew(ctx context.Context, gymID, id uint, dto service.RenewMemberDTO) (*models.Member, error)
	Cancel(ctx context.Context, gymID, id uint) (*models.Member, error)
	ForUser(ctx context.Context, userID uint) ([]*models.Member, error)
	QR(ctx context.Context, userID, memberID uint) (*service.QRPayload, error)
}

type CheckInService interface {
	Scan(ctx context.Context, gymID uint, qrCode string) (*service.CheckInResult, error)
	Manual(ctx context.Context, gymID, memberID uint) (*service.CheckInResult, error)
	List(ctx context.Context, gymID uint, f repository.CheckInFilter) (service.PageResult[models.CheckIn], error)
	Inside(ctx context.Context, gymID uint) ([]*models.CheckIn, error)
	MemberHistory(ctx context.Context, gymID, memberID uint, p repository.Page) (service.PageResult[models.CheckIn], error)
	UserHistory(ctx context.Context, userID uint, p repository.Page) (service.PageResult[models.CheckIn], error)
}

type TrainerService interface {
	Create(ctx context.Context, gymID uint, dto service.CreateTrainerDTO) (*models.Trainer, error)
	List(ctx context.Context, gymID uint, f repository.TrainerFilter) (service.PageResult[models.Trainer], error)
	Get(ctx context.Context, gymID, id uint) (*models.Trainer, error)
	Update(ctx context.Context, gymID, id uint, dto service.UpdateTrainerDTO) (*models.Trainer, error)
	Delete(ctx context.Context, gymID, id uint) error
}

type SpecialtyService interface {
	List(ctx context.Context) ([]*models.Specialty, error)
	Create(ctx context.Context, dto service.CreateSpecialtyDTO) (*models.Specialty, error)
	Delete(ctx context.Context, id uint) error
}

type ClassService interface {
	Create(ctx context.Context, gymID uint, dto service.CreateClassDTO) (*models.Class, error)
	List(ctx context.Context, gymID uint, f repository.ClassFilter) (service.PageResult[models.Class], error)
	ListForGyms(ctx context.Context, gymIDs []uint, f repository.ClassFilter) (service.PageResult[models.Class], error)
	Get(ctx context.Context, gymID, id uint) (*models.Class, error)
	Update(ctx context.Context, gymID, id uint, dto service.UpdateClassDTO) (*models.Class, error)
	Cancel(ctx context.Context, gymID, id uint) (*models.Class, error)
	Delete(ctx context.Context, gymID, id uint) error
}

type BookingService interface {
	Book(ctx context.Context, gymID, classID, memberID uint) (*models.Booking, error)
	BookForUser(ctx context.Context, userID, classID uint) (*models.Booking, error)
	Cancel(ctx context.Context, gymID, bookingID uint) (*models.Booking, error)
	CancelForUser(ctx context.Context, userID, bookingID uint) (*models.Booking, error)
	MarkAttended(ctx context.Context, gymID, bookingID uint) (*models.Booking, error)
	ListByClass(ctx context.Context, gymID, classID uint) ([]*models.Booking, error)
	ListByMember(ctx context.Context, gymID, memberID uint, p repository.Page) (service.PageResult[models.Booking], error)
	ListForUser(ctx context.Context, userID uint, p repository.Page) (service.PageResult[models.Booking], error)
}

type EquipmentService interface {
	Create(ctx context.Context, gymID uint, dto service.CreateEquipmentDTO) (*models.Equipment, error)
	List(ctx context.Context, gymID uint, f repository.EquipmentFilter) (service.PageResult[models.Equipment], error)
	Get(ctx context.Context, gymID, id uint) (*models.Equipment, error)
	Update(ctx context.Context, gymID, id uint, dto service.UpdateEquipmentDTO) (*models.Equipment, error)
	Delete(ctx context.Context, gymID, id uint) error
}

type StatsService interface {
	Dashboard(ctx context.Context, gymID uint) (*service.DashboardStats, error)
}

type ActivityService interface {
	List(ctx context.Context, gymID uint, f repository.ActivityLogFilter) (service.PageResult[models.ActivityLog], error)
}

// Services are the handlers' dependencies.
type Services struct {
	Tokens      TokenParser
	Gyms        GymService
	Admins      AdminService
	Users       UserService
	Members     MemberService
	CheckIns    CheckInService
	Trainers    TrainerService
	Specialties SpecialtyService
	Classes     ClassService
	Bookings    BookingService
	Equipment   EquipmentService
	Stats       StatsService
	Activity    ActivityService
	// Health is called by /healthz; nil reports healthy.
	Health func(ctx context.Context) error
}
