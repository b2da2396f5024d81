//go:build windows

package platform

import (
	"os/exec"
	"strings"
)

func psQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

// toastScript builds the PowerShell that raises a toast, with an image when
// icon is set.
func toastScript(title, body, icon string) string {
	tmpl := "ToastText02"
	if icon != "" {
		tmpl = "ToastImageAndText02"
	}
	var sb strings.Builder
	sb.WriteString(`[Windows.UI.Notifications.ToastNotificationManager, Windows.UI.Notifications, ContentType=Windows Runtime] > $null; `)
	sb.WriteString(`$t = [Windows.UI.Notifications.ToastNotificationManager]::GetTemplateContent([Windows.UI.Notifications.ToastTemplateType]::` + tmpl + `); `)
	sb.WriteString(`$x = $t.GetElementsByTagName("text"); `)
	sb.WriteString(`$x.Item(0).AppendChild($t.CreateTextNode(` + psQuote(title) + `)) > $null; `)
	sb.WriteString(`$x.Item(1).AppendChild($t.CreateTextNode(` + psQuote(body) + `)) > $null; `)
	if icon != "" {
		sb.WriteString(`$t.GetElementsByTagName("image").Item(0).SetAttribute("src", ` + psQuote(icon) + `); `)
	}
	sb.WriteString(`[Windows.UI.Notifications.ToastNotificationManager]::CreateToastNotifier(` + psQuote(AppName) + `).Show([Windows.UI.Notifications.ToastNotification]::new($t));`)
	return sb.String()
}

// Notify displays a toast notification using the Windows notification center.
func Notify(title, body string, opts Options) error {
	script := toastScript(title, body, strings.TrimSpace(opts.IconPath))
	return exec.Command("powershell.exe", "-NoProfile", "-Command", script).Run()
}
