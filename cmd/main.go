package main

import (
	"log"
	"log/slog"
	"os"

	"github.com/gin-gonic/gin"

	"azzipizza/config"
	"azzipizza/controllers"
	"azzipizza/database"
	"azzipizza/payments"
	"azzipizza/pricing"
	"azzipizza/realtime"
	"azzipizza/routes"
	"azzipizza/stores"
	"azzipizza/uploads"
)

func main() {

	config.LoadEnv()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	database.ConnectMongo()
	database.InitCollections()

	menuStore := stores.NewMongoMenuStore(database.MenuCollection)
	orderStore := stores.NewMongoOrderStore(database.OrderCollection, menuStore)
	pricer := pricing.NewEngine(menuStore)

	hub := realtime.NewHub()
	go hub.Run()
	defer hub.Close()

	notifier := realtime.NewOrderNotifier(orderStore, hub, logger)

	uploader := uploads.NewCloudinary(uploads.CloudinaryConfig{
		CloudName:    config.GetEnv("CLOUDINARY_CLOUD_NAME", ""),
		UploadPreset: config.GetEnv("CLOUDINARY_UPLOAD_PRESET", ""),
	})

	baseURL := config.GetEnv("BASE_URL", "http://localhost:5001")
	providers := map[string]payments.Provider{}

	if clientID := config.GetEnv("PAYPAL_CLIENT_ID", ""); clientID != "" {
		providers["paypal"] = payments.NewPaypal(payments.PaypalConfig{
			BaseURL:   config.GetEnv("PAYPAL_BASE_URL", "https://api-m.sandbox.paypal.com"),
			ClientID:  clientID,
			Secret:    config.MustGetEnv("PAYPAL_SECRET"),
			ReturnURL: baseURL + "/complete-order",
			CancelURL: baseURL + "/api/payments/cancel",
		})
	}

	if keyID := config.GetEnv("SATISPAY_KEY_ID", ""); keyID != "" {
		satispay, err := payments.NewSatispay(payments.SatispayConfig{
			KeyID:          keyID,
			PrivateKeyPath: config.MustGetEnv("SATISPAY_PRIVATE_KEY_PATH"),
			CallbackURL:    baseURL + "/api/payments/webhook",
			RedirectURL:    baseURL + "/complete-order",
		})
		if err != nil {
			log.Fatal("Satispay setup error:", err)
		}
		providers["satispay"] = satispay
	}

	r := gin.Default()
	r.SetTrustedProxies(nil)

	routes.RegisterRoutes(r, routes.Deps{
		Menu:     controllers.NewMenuController(menuStore, uploader),
		Orders:   controllers.NewOrderController(orderStore, pricer, notifier),
		Payments: controllers.NewPaymentController(orderStore, providers, notifier, logger),
		Hub:      hub,
		Notifier: notifier,
	})

	port := config.GetEnv("PORT", "5001")
	r.Run(":" + port)
}
