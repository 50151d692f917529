package handlers

// AppHandlers holds every HTTP handler.
type AppHandlers struct {
	HealthHandler      *HealthHandler
	AuthHandler        *AuthHandler
	StudentHandler     *StudentHandler
	ApplicationHandler *ApplicationHandler
	DocumentHandler    *DocumentHandler
	PaymentHandler     *PaymentHandler
	MessageHandler     *MessageHandler
	CatalogHandler     *CatalogHandler
	AdminHandler       *AdminHandler
}
