package tui

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/huh"

	"github.com/julianstephens/stackspledge/internal/constants"
	"github.com/julianstephens/stackspledge/internal/models"
	"github.com/julianstephens/stackspledge/internal/pledges"
	"github.com/julianstephens/stackspledge/internal/session"
)

type CreateFormModel struct {
	Message  string
	Category models.Category
}

type ConnectFormModel struct {
	Address    string
	WalletType models.WalletType
}

type ConfirmFormModel struct {
	Confirmed bool
}

// remaining formats the create form's character counter
func remaining(message string) string {
	return fmt.Sprintf("%d characters remaining", constants.MaxMessageLength-utf8.RuneCountInString(message))
}

func newCreateForm(fm *CreateFormModel) *huh.Form {
	options := make([]huh.Option[models.Category], len(models.Categories))
	for i, c := range models.Categories {
		options[i] = huh.NewOption(c.Emoji()+" "+string(c), c)
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewText().
				Title("What are you pledging?").
				DescriptionFunc(func() string { return remaining(fm.Message) }, &fm.Message).
				CharLimit(constants.MaxMessageLength).
				Value(&fm.Message).
				Validate(pledges.ValidateMessage),
			huh.NewSelect[models.Category]().
				Title("Category").
				Options(options...).
				Value(&fm.Category),
		),
	).WithTheme(huh.ThemeDracula())
}

func newConnectForm(fm *ConnectFormModel, network string) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Stacks address").
				Description("The gateway signs for this address on "+network).
				Value(&fm.Address).
				Validate(func(s string) error {
					net, err := session.AddressNetwork(strings.ToUpper(strings.TrimSpace(s)))
					if err != nil {
						return err
					}
					if network != "" && net != network {
						return fmt.Errorf("address is for %s, configured network is %s", net, network)
					}
					return nil
				}),
			huh.NewSelect[models.WalletType]().
				Title("Wallet").
				Options(
					huh.NewOption("CLI", models.WalletCLI),
					huh.NewOption("Stacks Connect", models.WalletStacksConnect),
					huh.NewOption("Reown", models.WalletReown),
				).
				Value(&fm.WalletType),
		),
	).WithTheme(huh.ThemeDracula())
}

func newConfirmCompleteForm(fm *ConfirmFormModel, p models.Pledge) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(fmt.Sprintf("Mark pledge #%d as completed?", p.ID)).
				Description(fmt.Sprintf("%q\nCosts %s STX plus %s STX network fee.",
					p.Message,
					models.FormatSTX(models.ActionComplete.ContractFee()),
					models.FormatSTX(models.ActionComplete.TxFee()))).
				Affirmative("Complete").
				Negative("Cancel").
				Value(&fm.Confirmed),
		),
	).WithTheme(huh.ThemeDracula())
}
