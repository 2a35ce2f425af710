package cli

import (
	"context"
	"fmt"
	"os"
)

// Login prompts for credentials and establishes a session. A successful
// login flips the auth state, which triggers a journal reconciliation in
// the background.
func (a *App) Login(ctx context.Context) {
	email, err := GetSimpleText(a.reader, "Enter email", os.Stdout)
	if err != nil {
		fmt.Println("Input error:", err)
		return
	}

	password, err := GetPassword(os.Stdout)
	if err != nil {
		fmt.Println("Input error:", err)
		return
	}

	user, err := a.authService.Login(ctx, email, password)
	if err != nil {
		fmt.Println("Login failed:", err)
		return
	}

	a.user = user
	fmt.Printf("Welcome back, %s!\n", user.Name)
	if user.Streak > 0 {
		fmt.Printf("Journaling streak: %d day(s)\n", user.Streak)
	}
}

// Logout drops the session. Cached journal entries stay on disk and remain
// readable offline.
func (a *App) Logout(ctx context.Context) {
	a.authService.Logout(ctx)
	a.user = nil
	a.day = nil
	fmt.Println("Logged out.")
}
