package application

// Game is the user program the loop drives. An error from any method
// other than OnResize stops the application.
type Game interface {
	// Initialize runs once after the platform and renderer are up.
	Initialize(app *Application) error
	Update(deltaTime float64) error
	Render(deltaTime float64) error
	OnResize(width, height uint32)
}
