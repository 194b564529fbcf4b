package app

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/nekogravitycat/item-sharing-backend/internal/api"
	"github.com/nekogravitycat/item-sharing-backend/internal/auth"
	"github.com/nekogravitycat/item-sharing-backend/internal/booking"
	"github.com/nekogravitycat/item-sharing-backend/internal/events"
	"github.com/nekogravitycat/item-sharing-backend/internal/item"
	"github.com/nekogravitycat/item-sharing-backend/internal/storage/memory"
	"github.com/nekogravitycat/item-sharing-backend/internal/user"
)

// Config holds the dependencies and settings required to start the application.
// A nil DBPool selects the in-memory stores.
type Config struct {
	IsProduction        bool
	ProdOrigins         string
	DBPool              *pgxpool.Pool
	JWTSecret           string
	JWTTTL              time.Duration
	OverlapSkipRejected bool
	Publisher           events.Publisher
	Logger              *zap.Logger
	Now                 func() time.Time
}

// MemoryStores exposes the in-memory stores so callers can seed them.
type MemoryStores struct {
	Users    *memory.UserRepository
	Items    *memory.ItemRepository
	Bookings *memory.BookingRepository
}

// Container holds the initialized components that are needed externally.
type Container struct {
	Router         *gin.Engine
	JWTManager     *auth.JWTManager
	BookingService booking.Service
	// Memory is nil when the container runs on Postgres.
	Memory *MemoryStores
}

// NewContainer initializes all modules and returns the container.
func NewContainer(cfg Config) *Container {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	// Init Components
	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.JWTTTL)

	// Stores
	var (
		userRepo    user.Repository
		itemRepo    item.Repository
		bookingRepo booking.Repository
		mem         *MemoryStores
	)
	if cfg.DBPool != nil {
		userRepo = user.NewPgxRepository(cfg.DBPool)
		itemRepo = item.NewPgxRepository(cfg.DBPool)
		bookingRepo = booking.NewPgxRepository(cfg.DBPool)
	} else {
		mem = &MemoryStores{
			Users:    memory.NewUserRepository(),
			Items:    memory.NewItemRepository(),
			Bookings: memory.NewBookingRepository(),
		}
		userRepo, itemRepo, bookingRepo = mem.Users, mem.Items, mem.Bookings
	}

	// User Module
	userService := user.NewService(userRepo)

	// Item Module
	itemService := item.NewService(itemRepo)

	// Booking Module
	bookingService := booking.NewService(
		bookingRepo,
		userService,
		itemService,
		cfg.Publisher,
		log.Named("booking"),
		booking.Options{OverlapSkipRejected: cfg.OverlapSkipRejected, Now: cfg.Now},
	)
	resolver := booking.NewNearestResolver(bookingRepo)

	// Router
	router := api.NewRouter(api.Config{
		IsProduction:    cfg.IsProduction,
		ProdOrigins:     cfg.ProdOrigins,
		Logger:          log.Named("http"),
		UserService:     userService,
		ItemService:     itemService,
		BookingService:  bookingService,
		NearestResolver: resolver,
		JWTManager:      jwtManager,
		Now:             cfg.Now,
	})

	return &Container{
		Router:         router,
		JWTManager:     jwtManager,
		BookingService: bookingService,
		Memory:         mem,
	}
}
