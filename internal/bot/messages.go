package bot

import "fmt"

// Fixed user-facing texts. The bot speaks Dutch.
const (
	msgGroupNotEnabled = "pimpy is nog niet ingeschakeld voor deze groep :/"
	msgGroupOnly       = "Dit commando werkt alleen in commissiechats."
	msgActieGroupOnly  = "Deze functie werkt alleen in commissiechats."
	msgPrivateOnly     = "Dit commando werkt alleen in een privéchat."
	msgNoTasks         = "Je hebt geen taken!"
	msgNoGroupTasks    = "Je hebt geen taken voor deze groep!"
	msgWhichTask       = "Welke taak? Protip: zet de taakcode achter het commando."
	msgActieSyntax     = "Incorrecte syntax. Probeer eens /actie [naam]: [titel]."

	msgHelp = `Dit kan ik allemaal:

/start - meld je aan met je API token
/tasks - je openstaande taken
/grouptasks - overzicht van alle taken in deze groep
/task [taakcode] - details van een taak
/done [taakcode] - zet een taak op done
/actie [naam]: [titel] - maak een nieuwe taak aan
/me - wat ik over je weet
/chatinfo - technische info over deze chat`
)

func strangerMessage(name string) string {
	return fmt.Sprintf(`Heya, %s! Cool dat je even komt kijken!

Voor nu is deze bot nog even afgesloten voor het publiek,
maar kom later vooral een keertje terug.

Joe!`, name)
}

func welcomeBackMessage(name string) string {
	return fmt.Sprintf("Welkom terug, %s! Zie /tasks om te zien welke taken je open hebt staan.", name)
}

func welcomeMessage(name string) string {
	return fmt.Sprintf("Welkom, %s! Zie /tasks om te zien welke taken je open hebt staan.", name)
}

func introMessage(name string) string {
	return fmt.Sprintf("Hee hallo, %s! Om me te kunnen gebruiken heb ik je API token van de via-site nodig. Stuur 'm me met /start [token], dan kan je meteen aan de slag!", name)
}

func badTokenMessage(name string) string {
	return fmt.Sprintf("Hallo, %s! Helaas is dat geen geldige API token...", name)
}

func invalidCodeMessage(code string) string {
	return fmt.Sprintf("%s is geen geldige taakcode.", code)
}

func notFoundMessage(code string) string {
	return fmt.Sprintf("Kan taak %s niet vinden :(", code)
}

func noRightsMessage(code string) string {
	return fmt.Sprintf("Je hebt geen rechten voor taak %s.", code)
}

func cannotEditMessage(code string) string {
	return fmt.Sprintf("Je mag taak <code>[%s]</code> niet aanpassen!", code)
}

func doneMessage(code string) string {
	return fmt.Sprintf("Taak %s staat nu op done!", code)
}

func actieSuggestionMessage(owner, title string) string {
	return fmt.Sprintf("Incorrecte syntax. Misschien bedoelde je /actie %s: %s?", owner, title)
}

func createdBanner(code string) string {
	return fmt.Sprintf("Taak <code>[%s]</code> aangemaakt!\n\n", code)
}

func meMessage(userID int64, onboarded bool) string {
	tokenLine := "geen API token opgeslagen"
	if onboarded {
		tokenLine = "API token opgeslagen"
	}
	return fmt.Sprintf("Dit weet ik over je:\n\ntelegram user_id: %d\n%s", userID, tokenLine)
}
