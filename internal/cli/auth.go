package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/pflag"

	"github.com/example/foodapp/internal/api"
	"github.com/example/foodapp/internal/utils"
)

const (
	countryCode = "+91"

	msgInvalidMobile   = "Please enter a valid 10-digit mobile number"
	msgInvalidOTP      = "Please enter the 6-digit OTP"
	msgUnexpectedLogin = "Unexpected response from server."
	msgOTPVerified     = "OTP verified successfully"
	msgOTPResent       = "A new OTP has been sent to your mobile number"
)

type slide struct {
	title string
	text  string
}

var slides = []slide{
	{"Discover Restaurants", "Find the best restaurants in your area with just a few taps"},
	{"Fast Delivery", "Get your food delivered quickly to your doorstep"},
	{"Easy Ordering", "Customize your orders and pay securely with multiple options"},
}

func newFlags(name string) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.SortFlags = false
	return fs
}

func (a *App) welcome(_ context.Context, _ []string) error {
	for i, s := range slides {
		fmt.Fprintf(a.out, "%d/%d  %s\n      %s\n\n", i+1, len(slides), s.title, s.text)
	}
	fmt.Fprintln(a.out, "Get Started: foodapp login --mobile <number>")
	return nil
}

func (a *App) login(ctx context.Context, args []string) error {
	fs := newFlags("login")
	mobile := fs.String("mobile", "", "10-digit mobile number")
	fs.SetOutput(a.err)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *mobile == "" && fs.NArg() > 0 {
		*mobile = fs.Arg(0)
	}

	if err := a.sendOTP(ctx, *mobile); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "OTP sent to %s %s\n", countryCode, *mobile)

	for {
		code, err := a.readLine("Enter the 6-digit OTP (r to resend): ")
		if errors.Is(err, io.EOF) || (err == nil && code == "") {
			fmt.Fprintf(a.out, "\nWhen the code arrives run: foodapp verify --mobile %s --otp <code>\n", *mobile)
			return nil
		}
		if err != nil {
			return fmt.Errorf("read otp: %w", err)
		}

		if strings.EqualFold(code, "r") {
			if _, err := a.session.SendOTP(ctx); err != nil {
				return withTitle(defaultAlertTitle, err, api.MsgSendOTPFailed)
			}
			fmt.Fprintf(a.out, "OTP Resent: %s\n", msgOTPResent)
			continue
		}
		if !utils.ValidOTP(code) {
			fmt.Fprintf(a.err, "%s: %s\n", defaultAlertTitle, msgInvalidOTP)
			continue
		}
		return a.verifyOTP(ctx, *mobile, code)
	}
}

// sendOTP continues to the OTP step only when the backend's message
// mentions the OTP.
func (a *App) sendOTP(ctx context.Context, mobile string) error {
	if !utils.ValidMobileNumber(mobile) {
		return api.NewValidationError(msgInvalidMobile)
	}
	a.session.SetMobileNumber(mobile)

	resp, err := a.session.SendOTP(ctx)
	if err != nil {
		return withTitle(defaultAlertTitle, err, api.MsgSendOTPFailed)
	}
	if resp == nil || !strings.Contains(resp.Message, "OTP") {
		return api.NewValidationError(msgUnexpectedLogin)
	}
	return nil
}

func (a *App) verify(ctx context.Context, args []string) error {
	fs := newFlags("verify")
	mobile := fs.String("mobile", "", "10-digit mobile number")
	otp := fs.String("otp", "", "6-digit code")
	fs.SetOutput(a.err)
	if err := fs.Parse(args); err != nil {
		return err
	}

	if !utils.ValidMobileNumber(*mobile) {
		return api.NewValidationError(msgInvalidMobile)
	}
	if !utils.ValidOTP(*otp) {
		return api.NewValidationError(msgInvalidOTP)
	}
	return a.verifyOTP(ctx, *mobile, *otp)
}

func (a *App) verifyOTP(ctx context.Context, mobile, code string) error {
	a.session.SetMobileNumber(mobile)
	a.session.SetOTP(code)

	user, err := a.session.VerifyOTP(ctx)
	if err != nil {
		return withTitle("Verification Failed", err, api.MsgVerifyOTPFailed)
	}
	fmt.Fprintf(a.out, "Success: %s\n", msgOTPVerified)
	if user.FullName != "" {
		fmt.Fprintf(a.out, "Welcome back, %s!\n", user.FullName)
	}
	return nil
}

func (a *App) logout(ctx context.Context, _ []string) error {
	if err := a.session.Logout(ctx); err != nil {
		return alertf(defaultAlertTitle, "Failed to logout")
	}
	return nil
}

func (a *App) whoami(_ context.Context, _ []string) error {
	st := a.session.State()
	fmt.Fprintf(a.out, "Mobile:   %s %s\n", countryCode, st.MobileNumber)
	if st.User != nil {
		if st.User.FullName != "" {
			fmt.Fprintf(a.out, "Name:     %s\n", st.User.FullName)
		}
		if !st.User.CustomerID.IsZero() {
			fmt.Fprintf(a.out, "Customer: %s\n", st.User.CustomerID)
		}
	}
	return nil
}
