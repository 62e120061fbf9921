package auth

import "strings"

// Permission constants define the available permissions in the system.
// They are assigned to roles and checked by the RBAC middleware.
const (
	// PermBibleRead allows reading and searching bible content.
	PermBibleRead = "bible.read"
	// PermBibleImport allows importing books, chapters and verses from the scripture api.
	PermBibleImport = "bible.import"

	// PermLibraryManage allows keeping favorites, highlights and search history.
	PermLibraryManage = "library.manage"

	// PermCommunityPost allows writing posts and comments.
	PermCommunityPost = "community.post"
	// PermCommunityModerate allows deleting posts and comments of other users.
	PermCommunityModerate = "community.moderate"

	// PermChatAsk allows asking the assistant.
	PermChatAsk = "chat.ask"

	// PermSubscriptionManage allows subscribing to and cancelling plans.
	PermSubscriptionManage = "subscription.manage"

	// PermAdminSettings allows managing application-wide settings.
	PermAdminSettings = "admin.settings"
	// PermAdminUsers allows managing user accounts.
	PermAdminUsers = "admin.users"
)

// PermissionDefinition describes a permission row to seed.
type PermissionDefinition struct {
	Name        string
	Description string
}

// Resource returns the part before the last dot ("community" for "community.moderate").
func (d PermissionDefinition) Resource() string {
	resource, _ := splitPermission(d.Name)

	return resource
}

// Action returns the part after the last dot ("moderate" for "community.moderate").
func (d PermissionDefinition) Action() string {
	_, action := splitPermission(d.Name)

	return action
}

// Definitions lists every permission with its description.
func Definitions() []PermissionDefinition {
	return []PermissionDefinition{
		{PermBibleRead, "Read and search bible content"},
		{PermBibleImport, "Import bible content from the scripture api"},
		{PermLibraryManage, "Keep favorites, highlights and search history"},
		{PermCommunityPost, "Write community posts and comments"},
		{PermCommunityModerate, "Delete community posts and comments of other users"},
		{PermChatAsk, "Ask the bible assistant"},
		{PermSubscriptionManage, "Subscribe to plans"},
		{PermAdminSettings, "Manage application settings"},
		{PermAdminUsers, "Manage user accounts"},
	}
}

// MemberPermissions are granted to the default role of new accounts.
func MemberPermissions() []string {
	return []string{
		PermBibleRead,
		PermLibraryManage,
		PermCommunityPost,
		PermChatAsk,
		PermSubscriptionManage,
	}
}

func splitPermission(name string) (resource, action string) {
	i := strings.LastIndex(name, ".")
	if i < 0 {
		return name, ""
	}

	return name[:i], name[i+1:]
}
