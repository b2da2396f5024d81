package platform

// AppName identifies memeshot to the host notification service.
const AppName = "memeshot"

// Options configures how a notification is displayed on the host platform.
type Options struct {
	// IconPath, when non-empty, points to an image file shown with the
	// notification where supported.
	IconPath string
}
