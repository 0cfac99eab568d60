package router

import (
	"sync"

	escsvc "lumen-backend/internal/application/escrow"
	listsvc "lumen-backend/internal/application/listings"
	mesvc "lumen-backend/internal/application/marketevents"
	salesvc "lumen-backend/internal/application/sales"
	txsvc "lumen-backend/internal/application/transactions"
	usersvc "lumen-backend/internal/application/users"
	authsvc "lumen-backend/internal/auth"
	"lumen-backend/internal/capability"
	"lumen-backend/internal/config"
	"lumen-backend/internal/constants"
	"lumen-backend/internal/domain"
	"lumen-backend/internal/infrastructure/database"
	authhandler "lumen-backend/internal/interfaces/handlers/auth"
	eschandler "lumen-backend/internal/interfaces/handlers/escrow"
	healthhandler "lumen-backend/internal/interfaces/handlers/health"
	listhandler "lumen-backend/internal/interfaces/handlers/listings"
	mehandler "lumen-backend/internal/interfaces/handlers/marketevents"
	reghandler "lumen-backend/internal/interfaces/handlers/registry"
	saleshandler "lumen-backend/internal/interfaces/handlers/sales"
	tokhandler "lumen-backend/internal/interfaces/handlers/token"
	txhandler "lumen-backend/internal/interfaces/handlers/transactions"
	userhandler "lumen-backend/internal/interfaces/handlers/users"
	"lumen-backend/internal/middleware"
	"lumen-backend/internal/registry"
	"lumen-backend/internal/token"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type gormDBPinger struct {
	db *gorm.DB
}

func (g *gormDBPinger) Ping() error {
	if g == nil || g.db == nil {
		return nil
	}
	sqlDB, err := g.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}

func CreateApp(cfg *config.Config) (*fiber.App, *gorm.DB, *redis.Client, error) {
	app := fiber.New(fiber.Config{
		DisableStartupMessage:   true,
		ErrorHandler:            middleware.ErrorHandler,
		EnableTrustedProxyCheck: true,
	})

	app.Use(middleware.CORS(middleware.CORSConfig{
		AllowedSuffix: cfg.FrontendSuffix,
		DevPassword:   cfg.DevPassword,
	}))

	sessionCfg := middleware.SessionConfig{
		Secret:            cfg.SessionSecret,
		RedisURL:          cfg.RedisURL,
		AllowCrossSiteDev: cfg.AllowCrossSiteDev,
		IsProduction:      cfg.Env == "production",
	}
	sessionHandler, rdb, err := middleware.Session(sessionCfg)
	if err != nil {
		return nil, nil, nil, err
	}
	app.Use(sessionHandler)
	app.Use(middleware.HealthMarker(rdb))
	app.Use(middleware.ResponseFormatter())
	app.Use(middleware.RequestID())
	app.Use(middleware.RequestLogger())

	hh := &healthhandler.Handlers{
		Rdb:            rdb,
		DB:             nil,
		HealthAdminKey: cfg.HealthAdminKey,
	}
	app.Get("/", hh.Root)
	app.Get("/reset", hh.Reset)
	app.Get("/health/json", hh.JSON)
	app.Get("/health/errors", hh.Errors)

	var db *gorm.DB
	if cfg.DatabaseURL != "" {
		var errDB error
		db, errDB = database.Open(cfg.DatabaseURL)
		if errDB != nil {
			return nil, nil, nil, errDB
		}
		hh.DB = &gormDBPinger{db: db}
	}

	var userFinder authsvc.UserFinder
	if db != nil {
		userFinder = &authsvc.GormUserFinder{DB: db}
	}
	ah := &authhandler.Handlers{
		UserFinder: userFinder,
		Rdb:        rdb,
		Config:     sessionCfg,
	}
	authGroup := app.Group("/api/v1/auth")
	authGroup.Post("/login", ah.Login)
	authGroup.Get("/me", ah.Me)
	authGroup.Delete("/logout", ah.Logout)

	if db != nil && rdb != nil {
		if err := database.AutoMigrate(db); err != nil {
			return nil, nil, nil, err
		}
		if err := database.SeedListingFee(db, cfg.DefaultListingFee); err != nil {
			return nil, nil, nil, err
		}

		tokenStore := token.NewStore()
		registryStore := registry.NewStore()
		caps := capability.NewChecker()

		// The manager principals move buyer funds into escrow and credit
		// pending balances, so both need the deposit capability.
		if err := caps.Grant(db, cfg.SaleManagerPrincipal, domain.CapEscrowDeposit); err != nil {
			return nil, nil, nil, err
		}
		if err := caps.Grant(db, cfg.ListingManagerPrincipal, domain.CapEscrowDeposit); err != nil {
			return nil, nil, nil, err
		}
		if err := syncAdminGrants(db, caps); err != nil {
			return nil, nil, nil, err
		}

		// One lock for every marketplace mutation. Sales, listings and
		// escrow all share it so each operation commits before the next
		// observes state.
		mu := &sync.Mutex{}

		es := &escsvc.Service{
			DB:      db,
			Token:   tokenStore,
			Caps:    caps,
			Account: cfg.EscrowPrincipal,
			Mu:      mu,
		}
		ss := &salesvc.Service{
			DB:        db,
			Token:     tokenStore,
			Registry:  registryStore,
			Escrow:    es,
			Caps:      caps,
			Principal: cfg.SaleManagerPrincipal,
			Mu:        mu,
		}
		ls := &listsvc.Service{
			DB:        db,
			Token:     tokenStore,
			Registry:  registryStore,
			Escrow:    es,
			Caps:      caps,
			Principal: cfg.ListingManagerPrincipal,
			Treasury:  cfg.TreasuryAccount,
			Mu:        mu,
		}

		us := &usersvc.Service{DB: db, Caps: caps}
		uh := &userhandler.Handlers{Service: us}
		// Registration is public; role assignment is admin-only.
		app.Post("/api/v1/users/create-user", uh.CreateUser)
		ug := app.Group("/api/v1/users", middleware.RequireAuth())
		ug.Get("/view-user", uh.ViewUser)
		ug.Patch("/update-role", middleware.AuthorizePermission(constants.AssignRole), uh.UpdateRole)

		sh := &saleshandler.Handlers{Service: ss}
		sg := app.Group("/api/v1/sales", middleware.RequireAuth())
		sg.Post("/create-sale", middleware.AuthorizePermission(constants.CreateSale), sh.CreateSale)
		sg.Post("/participate", middleware.AuthorizePermission(constants.ParticipateSale), sh.Participate)
		sg.Post("/force-close", middleware.AuthorizePermission(constants.ForceCloseSale), sh.ForceClose)
		sg.Get("/get-sale/:sale_id", middleware.AuthorizePermission(constants.ViewData), sh.GetSale)
		sg.Get("/get-active-sales", middleware.AuthorizePermission(constants.ViewData), sh.GetActiveSales)
		sg.Patch("/set-listing-fee", middleware.AuthorizePermission(constants.SetListingFee), sh.SetListingFee)

		lh := &listhandler.Handlers{Service: ls}
		lg := app.Group("/api/v1/listings", middleware.RequireAuth())
		lg.Post("/list-license", middleware.AuthorizePermission(constants.ListLicense), lh.ListLicense)
		lg.Post("/purchase-license", middleware.AuthorizePermission(constants.PurchaseLicense), lh.PurchaseLicense)
		lg.Post("/cancel-listing", middleware.AuthorizePermission(constants.CancelListing), lh.CancelListing)
		lg.Get("/get-listing/:listing_id", middleware.AuthorizePermission(constants.ViewData), lh.GetListing)
		lg.Get("/get-listed-licenses", middleware.AuthorizePermission(constants.ViewData), lh.GetListedLicenses)
		lg.Get("/get-listing-fee", middleware.AuthorizePermission(constants.ViewData), lh.GetListingFee)

		eh := &eschandler.Handlers{Service: es}
		eg := app.Group("/api/v1/escrow", middleware.RequireAuth())
		eg.Post("/withdraw", middleware.AuthorizePermission(constants.WithdrawEscrow), eh.Withdraw)
		eg.Get("/balance", middleware.AuthorizePermission(constants.ViewData), eh.Balance)

		th := &tokhandler.Handlers{DB: db, Token: tokenStore}
		tg := app.Group("/api/v1/token", middleware.RequireAuth())
		tg.Post("/approve", middleware.AuthorizePermission(constants.ApproveSpend), th.Approve)
		tg.Get("/balance", middleware.AuthorizePermission(constants.ViewData), th.Balance)
		tg.Get("/allowance/:spender", middleware.AuthorizePermission(constants.ViewData), th.Allowance)
		tg.Post("/mint", middleware.AuthorizePermission(constants.MintToken), th.Mint)

		rh := &reghandler.Handlers{DB: db, Registry: registryStore}
		rg := app.Group("/api/v1/registry", middleware.RequireAuth())
		rg.Get("/balance/:token_id", middleware.AuthorizePermission(constants.ViewData), rh.Balance)
		rg.Get("/royalty/:token_id", middleware.AuthorizePermission(constants.ViewData), rh.Royalty)

		txs := &txsvc.Service{DB: db}
		txh := &txhandler.Handlers{Service: txs}
		txg := app.Group("/api/v1/transactions", middleware.RequireAuth())
		txg.Get("/get-transactions", middleware.AuthorizePermission(constants.ViewData), txh.GetTransactions)

		mes := &mesvc.Service{DB: db}
		meh := &mehandler.Handlers{Service: mes}
		meg := app.Group("/api/v1/market-events", middleware.RequireAuth())
		meg.Get("/get-events", middleware.AuthorizePermission(constants.ViewData), meh.GetEvents)
	}

	return app, db, rdb, nil
}

// syncAdminGrants gives every admin user the market-admin capability, which
// the sale manager checks on force-close and fee changes.
func syncAdminGrants(db *gorm.DB, caps *capability.Checker) error {
	var admins []domain.User
	if err := db.Where("role = ?", constants.Admin).Find(&admins).Error; err != nil {
		return err
	}
	for _, u := range admins {
		if err := caps.Grant(db, u.UserID, domain.CapMarketAdmin); err != nil {
			return err
		}
	}
	return nil
}
