package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"go-printshop-ws/internal/handler"
	"go-printshop-ws/internal/middleware"
	"go-printshop-ws/internal/model"
	"go-printshop-ws/internal/repository"
	"go-printshop-ws/internal/service"
	"go-printshop-ws/internal/ws"
	"go-printshop-ws/pkg/database"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
	"gorm.io/gorm"
)

func main() {
	// 1. Load Env
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}

	// 2. Setup Database
	db := database.ConnectDB()
	// Auto Migrate (Hati-hati di production, sebaiknya pakai tools migrasi terpisah)
	db.AutoMigrate(
		&model.Product{}, &model.File{}, &model.PrintJob{}, &model.Payment{},
		&model.Notification{}, &model.User{}, &model.Privilege{}, &model.Role{},
	)

	// 3. Seed default privileges, roles, admin user, and paper products
	seedDefaults(db)

	// 4. Setup WebSocket Hub
	wsHub := ws.NewHub()
	go wsHub.Run()

	// 5. Dependency Injection (Wiring Layers)
	productRepo := repository.NewProductRepo(db)
	jobRepo := repository.NewPrintJobRepo(db)
	fileRepo := repository.NewFileRepo(db)
	paymentRepo := repository.NewPaymentRepo(db)
	notifRepo := repository.NewNotificationRepo(db)
	userRepo := repository.NewUserRepo(db)
	privilegeRepo := repository.NewPrivilegeRepo(db)
	roleRepo := repository.NewRoleRepo(db)

	notifService := service.NewNotificationService(notifRepo, userRepo, jobRepo, wsHub)
	jobService := service.NewPrintJobService(jobRepo, productRepo, fileRepo, db, notifService)
	invService := service.NewInventoryService(productRepo, db, wsHub)
	paymentService := service.NewPaymentService(paymentRepo, jobRepo, db)
	reportService := service.NewReportService(jobRepo, paymentRepo, productRepo)
	authService := service.NewAuthService(userRepo, roleRepo, wsHub)
	userService := service.NewUserService(userRepo, privilegeRepo, roleRepo)

	jobHandler := handler.NewPrintJobHandler(jobService)
	invHandler := handler.NewInventoryHandler(invService)
	paymentHandler := handler.NewPaymentHandler(paymentService)
	notifHandler := handler.NewNotificationHandler(notifService)
	reportHandler := handler.NewReportHandler(reportService)
	authHandler := handler.NewAuthHandler(authService)
	userHandler := handler.NewUserHandler(userService)
	roleHandler := handler.NewRoleHandler(roleRepo)

	// 6. Setup Fiber
	app := fiber.New(fiber.Config{
		AppName: "PrintShop POS v1.0",
	})

	// Middleware
	app.Use(logger.New())  // Logging request
	app.Use(recover.New()) // Panic recovery
	app.Use(cors.New())    // CORS

	// 7. Routes
	api := app.Group("/api/v1")

	// ============ PUBLIC ROUTES ============
	// Auth Routes (No authentication required)
	auth := api.Group("/auth")
	auth.Post("/login", authHandler.Login)
	auth.Post("/register", authHandler.Register)
	auth.Post("/reset-password", authHandler.ResetPassword)
	auth.Post("/validate-token", authHandler.ValidateToken)
	auth.Post("/logout", middleware.RequireAuth(userRepo), authHandler.Logout)
	auth.Post("/heartbeat", middleware.RequireAuth(userRepo), authHandler.Heartbeat) // Heartbeat uses Auth but available to all authenticated

	// ============ PROTECTED ROUTES ============
	// All routes below require authentication
	protected := api.Group("", middleware.RequireAuth(userRepo))

	// Print Job Routes
	protected.Get("/jobs", middleware.RequirePrivilege("job:view"), jobHandler.GetJobs)
	protected.Get("/jobs/mine", jobHandler.GetMyJobs)
	protected.Get("/jobs/:id", middleware.RequirePrivilege("job:view"), jobHandler.GetJob)
	protected.Post("/jobs", middleware.RequirePrivilege("job:submit"), jobHandler.Submit)
	protected.Patch("/jobs/:id/status", middleware.RequireAnyPrivilege("job:approve", "job:decline"), jobHandler.ChangeStatus)
	protected.Post("/jobs/:id/print", middleware.RequirePrivilege("job:print"), jobHandler.StartPrint)

	// Payment Routes
	protected.Post("/payments", middleware.RequirePrivilege("payment:record"), paymentHandler.RecordPayment)
	protected.Get("/payments/job/:id", middleware.RequirePrivilege("payment:view"), paymentHandler.GetJobPayments)

	// Product Routes (with privilege checks)
	protected.Get("/products", invHandler.GetProducts)
	protected.Get("/products/:id", invHandler.GetProduct)
	protected.Post("/products", middleware.RequirePrivilege("product:create"), invHandler.CreateProduct)
	protected.Put("/products/:id", middleware.RequirePrivilege("product:update"), invHandler.UpdateProduct)
	protected.Post("/products/:id/restock", middleware.RequirePrivilege("product:restock"), invHandler.Restock)
	protected.Delete("/products/:id", middleware.RequirePrivilege("product:delete"), invHandler.DeleteProduct)

	// Notification Routes
	protected.Get("/notifications", notifHandler.GetMyNotifications)
	protected.Get("/notifications/unread-count", notifHandler.GetUnreadCount)
	protected.Patch("/notifications/read-all", notifHandler.MarkAllRead)
	protected.Delete("/notifications", notifHandler.Clear)
	protected.Patch("/notifications/:id/read", notifHandler.MarkRead)
	protected.Post("/notifications/declined/:id", middleware.RequirePrivilege("job:decline"), notifHandler.MessageDeclinedUser)
	protected.Post("/notifications/broadcast", middleware.RequirePrivilege("notification:broadcast"), notifHandler.Broadcast)

	// Report Routes
	protected.Get("/reports/dashboard", middleware.RequirePrivilege("report:view"), reportHandler.GetDashboardStats)
	protected.Get("/reports/revenue", middleware.RequirePrivilege("report:view"), reportHandler.GetRevenue)
	protected.Get("/reports/revenue/custom", middleware.RequirePrivilege("report:view"), reportHandler.GetRevenueBetween)
	protected.Get("/reports/users", middleware.RequirePrivilege("report:view"), reportHandler.GetUserActivity)

	// User Management Routes (with privilege checks)
	protected.Get("/users", userHandler.GetUsers)
	protected.Get("/users/:id", userHandler.GetUser)
	protected.Post("/users", middleware.RequirePrivilege("user:create"), userHandler.CreateUser)
	protected.Put("/users/:id", middleware.RequirePrivilege("user:update"), userHandler.UpdateUser)
	protected.Patch("/users/:id/active", middleware.RequirePrivilege("user:disable"), userHandler.SetUserActive)
	protected.Put("/users/:id/privileges", middleware.RequirePrivilege("user:update_privilege"), userHandler.UpdateUserPrivileges)

	// Role Routes
	protected.Get("/roles", roleHandler.GetRoles)

	// Privileges Route (list all available privileges)
	protected.Get("/privileges", func(c *fiber.Ctx) error {
		privileges, err := privilegeRepo.FindAll()
		if err != nil {
			return c.Status(500).JSON(fiber.Map{"error": "Failed to fetch privileges"})
		}
		return c.JSON(privileges)
	})

	// WebSocket Route
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			// Carry the user ID into the upgraded connection so targeted
			// pushes (pickup notices etc.) can find this socket.
			c.Locals("ws_user_id", c.Query("user_id"))
			return c.Next()
		}
		return c.SendStatus(fiber.StatusUpgradeRequired)
	})
	app.Get("/ws", websocket.New(func(c *websocket.Conn) {
		userID, _ := c.Locals("ws_user_id").(string)
		wsHub.Register <- &ws.Client{Conn: c, UserID: userID}
		defer func() { wsHub.Unregister <- c }()

		for {
			// Keep alive loop
			if _, _, err := c.ReadMessage(); err != nil {
				break
			}
		}
	}))

	// 8. Graceful Shutdown
	go func() {
		port := os.Getenv("PORT")
		if port == "" {
			port = "3000"
		}
		if err := app.Listen(":" + port); err != nil {
			log.Panic(err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	if err := app.Shutdown(); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exited")
}

// seedDefaults creates default privileges, roles, paper products, and the
// admin user if they don't exist
func seedDefaults(db *gorm.DB) {
	privilegeRepo := repository.NewPrivilegeRepo(db)
	productRepo := repository.NewProductRepo(db)
	userRepo := repository.NewUserRepo(db)
	roleRepo := repository.NewRoleRepo(db)

	// 1. Seed privileges first
	if err := privilegeRepo.SeedDefaults(); err != nil {
		log.Printf("Warning: Failed to seed privileges: %v", err)
	}

	// 2. Seed roles
	if err := roleRepo.SeedDefaults(); err != nil {
		log.Printf("Warning: Failed to seed roles: %v", err)
	}

	// 3. Seed paper products
	if err := productRepo.SeedDefaults(); err != nil {
		log.Printf("Warning: Failed to seed products: %v", err)
	}

	// 4. Assign privileges to roles
	allPrivileges, _ := privilegeRepo.FindAll()

	// MASTER_ADMIN gets ALL privileges
	masterRole, err := roleRepo.FindByCode(model.RoleMasterAdmin)
	if err == nil && len(masterRole.Privileges) == 0 {
		db.Model(&masterRole).Association("Privileges").Replace(allPrivileges)
		log.Println("✅ MASTER_ADMIN role assigned all privileges")
	}

	// ADMIN gets limited privileges (exclude user management)
	adminRole, err := roleRepo.FindByCode(model.RoleAdmin)
	if err == nil && len(adminRole.Privileges) == 0 {
		adminPrivileges := []model.Privilege{}
		for _, p := range allPrivileges {
			// Exclude user creation, update, disable, and privilege update
			if p.Code != "user:create" && p.Code != "user:update" && p.Code != "user:disable" && p.Code != "user:update_privilege" {
				adminPrivileges = append(adminPrivileges, p)
			}
		}
		db.Model(&adminRole).Association("Privileges").Replace(adminPrivileges)
		log.Println("✅ ADMIN role assigned limited privileges")
	}

	// CUSTOMER gets the self-service subset
	customerRole, err := roleRepo.FindByCode(model.RoleCustomer)
	if err == nil && len(customerRole.Privileges) == 0 {
		customerPrivileges := []model.Privilege{}
		for _, p := range allPrivileges {
			for _, code := range model.CustomerPrivilegeCodes {
				if p.Code == code {
					customerPrivileges = append(customerPrivileges, p)
				}
			}
		}
		db.Model(&customerRole).Association("Privileges").Replace(customerPrivileges)
		log.Println("✅ CUSTOMER role assigned self-service privileges")
	}

	// 5. Create default admin user with MASTER_ADMIN role
	_, err = userRepo.FindByEmail("admin@example.com")
	if err != nil {
		// Create admin user
		masterRole, _ := roleRepo.FindByCode(model.RoleMasterAdmin)

		admin := &model.User{
			Username:   "admin",
			Email:      "admin@example.com",
			FullName:   "Master Administrator",
			Contact:    "",
			RoleID:     &masterRole.ID,
			IsActive:   true,
			Privileges: masterRole.Privileges,
		}
		admin.CreatedBy = "system"
		admin.UpdatedBy = "system"

		if err := admin.SetPassword("admin123"); err != nil {
			log.Printf("Warning: Failed to hash admin password: %v", err)
			return
		}

		if err := userRepo.Create(admin); err != nil {
			log.Printf("Warning: Failed to create admin user: %v", err)
		} else {
			log.Println("✅ Admin user created: admin@example.com / admin123 (MASTER_ADMIN)")
		}
	}
}
