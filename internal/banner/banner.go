// Package banner prints the startup banner.
package banner

import "fmt"

// Logo is the ASCII art logo for pimpybot
const Logo = `
   ██████╗ ██╗███╗   ███╗██████╗ ██╗   ██╗
   ██╔══██╗██║████╗ ████║██╔══██╗╚██╗ ██╔╝
   ██████╔╝██║██╔████╔██║██████╔╝ ╚████╔╝
   ██╔═══╝ ██║██║╚██╔╝██║██╔═══╝   ╚██╔╝
   ██║     ██║██║ ╚═╝ ██║██║        ██║
   ╚═╝     ╚═╝╚═╝     ╚═╝╚═╝        ╚═╝
`

// Tagline is the project tagline
const Tagline = "Taken regelen zonder de via-site te openen"

// Print prints the banner with tagline
func Print() {
	fmt.Print(Logo)
	fmt.Printf("   %s\n\n", Tagline)
}

// Startup prints the full startup banner.
func Startup(version string, users, groups int) {
	fmt.Print(Logo)
	fmt.Printf("   %s\n", Tagline)
	fmt.Println()
	fmt.Printf("   Version: v%s\n", version)
	fmt.Printf("   Users:   %d onboarded\n", users)
	fmt.Printf("   Groups:  %d mapped\n", groups)
	fmt.Println()
	fmt.Println("   Listening... (Ctrl+C to stop)")
	fmt.Println()
}
