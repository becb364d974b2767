package container

import (
	"log/slog"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/partylinehq/partyline/internal/models"
	"github.com/partylinehq/partyline/internal/services"
	"github.com/supabase-community/supabase-go"
	"go.mongodb.org/mongo-driver/mongo"
)

// Container wires repos into services once at startup; every dependency is
// passed explicitly from here on.
type Container struct {
	Logger *slog.Logger

	UserService       *services.UserService
	PartyService      *services.PartyService
	MembershipService *services.MembershipService
}

func NewContainer(
	logger *slog.Logger,
	supabaseClient *supabase.Client,
	mongoDBClient *mongo.Client,
	cld *cloudinary.Cloudinary,
) *Container {
	supa := models.SupabaseNewRepo(supabaseClient)
	mongoRepo := models.MongodbNewRepo(mongoDBClient)

	return &Container{
		Logger:            logger,
		UserService:       services.NewUserService(supa, mongoRepo, cld),
		PartyService:      services.NewPartyService(mongoRepo, mongoRepo),
		MembershipService: services.NewMembershipService(mongoRepo, mongoRepo),
	}
}
