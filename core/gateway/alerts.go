package gateway

import (
	"fmt"
	"net/mail"

	"github.com/trezcool/mtihani/core"
)

// AlertNotifier emails the ops team whenever the detector blocks a submission.
// Delivery rides on the EmailService's own goroutines; the hook never blocks the
// request path.
type AlertNotifier struct {
	mailSvc core.EmailService
	to      []mail.Address
}

func NewAlertNotifier(mailSvc core.EmailService, recipients ...string) *AlertNotifier {
	to := make([]mail.Address, 0, len(recipients))
	for _, addr := range recipients {
		to = append(to, mail.Address{Address: addr})
	}
	return &AlertNotifier{mailSvc: mailSvc, to: to}
}

// Hook returns a DenyHook firing only on suspicious-activity denials.
func (n *AlertNotifier) Hook() DenyHook {
	return func(req Request, class OperationClass, d Decision) {
		if d.Reason != ReasonSuspiciousActivity {
			return
		}
		id := req.Identity()
		n.mailSvc.SendMessages(&core.EmailMessage{
			To:      n.to,
			Subject: "Suspicious exam submission blocked",
			TextContent: fmt.Sprintf(
				"A suspicious exam submission was blocked.\n\n"+
					"Origin: %s\nSubject: %s\nPath: %s\nUser-Agent: %s\n",
				id.Origin, id.Subject, req.Path, req.UserAgent,
			),
		})
	}
}
