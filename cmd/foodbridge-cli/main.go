// Command foodbridge-cli is a small console front end for the foodbridge
// API. It keeps its session in ~/.foodbridge/session.json and watches for
// approval notifications when asked to.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/foodbridge/foodbridge/pkg/client"
)

func main() {
	baseURL := flag.String("url", envOr("FOODBRIDGE_URL", "http://localhost:8080"), "API base URL")
	yes := flag.Bool("yes", false, "answer yes to every confirmation prompt")
	flag.Parse()

	if flag.NArg() == 0 {
		usage()
		os.Exit(2)
	}

	home, err := os.UserHomeDir()
	if err != nil {
		fatal(err)
	}
	opts := []client.Option{
		client.WithSessionStore(client.NewFileStore(filepath.Join(home, ".foodbridge", "session.json"))),
	}
	if !*yes {
		opts = append(opts, client.WithConfirmer(stdinConfirmer{}))
	}
	api := client.New(*baseURL, opts...)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := dispatch(ctx, api, flag.Args()); err != nil {
		fatal(err)
	}
}

func dispatch(ctx context.Context, api *client.Client, args []string) error {
	cmd, rest := args[0], args[1:]
	switch cmd {
	case "register":
		return register(ctx, api, rest)
	case "login":
		return login(ctx, api, rest)
	case "logout":
		return api.Logout(ctx)
	case "profile":
		return profile(ctx, api, rest)
	case "donations":
		return donations(ctx, api, rest)
	case "request":
		return request(ctx, api, rest)
	case "requests":
		return listRequests(ctx, api)
	case "watch":
		return watch(ctx, api)
	case "admin":
		return admin(ctx, api, rest)
	default:
		usage()
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func register(ctx context.Context, api *client.Client, args []string) error {
	fs := flag.NewFlagSet("register", flag.ExitOnError)
	in := client.RegisterInput{}
	fs.StringVar(&in.Name, "name", "", "organization name")
	fs.StringVar(&in.Email, "email", "", "login email")
	fs.StringVar(&in.Password, "password", "", "password")
	fs.StringVar(&in.Phone, "phone", "", "contact phone")
	fs.StringVar(&in.Address, "address", "", "address")
	fs.StringVar(&in.Type, "type", "NGO", "organization type (NGO or INDIVIDUAL)")
	fs.StringVar(&in.Description, "description", "", "description")
	fs.Parse(args)

	org, err := api.Register(ctx, in)
	if err != nil {
		return err
	}
	fmt.Printf("registered %s (%s)\n", org.Name, org.ID)
	return nil
}

func login(ctx context.Context, api *client.Client, args []string) error {
	fs := flag.NewFlagSet("login", flag.ExitOnError)
	email := fs.String("email", "", "login email")
	password := fs.String("password", "", "password")
	fs.Parse(args)

	identity, err := api.Login(ctx, *email, *password)
	if err != nil {
		return err
	}
	fmt.Printf("logged in as organization %s\n", identity.OrganizationID)
	return nil
}

func profile(ctx context.Context, api *client.Client, args []string) error {
	if len(args) > 0 && args[0] == "update" {
		fs := flag.NewFlagSet("profile update", flag.ExitOnError)
		in := client.ProfileUpdate{}
		fs.StringVar(&in.Name, "name", "", "organization name")
		fs.StringVar(&in.Email, "email", "", "login email")
		fs.StringVar(&in.Phone, "phone", "", "contact phone")
		fs.StringVar(&in.Address, "address", "", "address")
		fs.StringVar(&in.Description, "description", "", "description")
		fs.Parse(args[1:])

		org, err := api.UpdateProfile(ctx, in)
		if err != nil {
			return err
		}
		fmt.Printf("updated %s\n", org.Name)
		return nil
	}

	org, err := api.Profile(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("%s (%s)\n%s\n%s\n%s\n", org.Name, org.Type, org.Email, org.Phone, org.Address)
	return nil
}

func donations(ctx context.Context, api *client.Client, args []string) error {
	sub := "mine"
	if len(args) > 0 {
		sub = args[0]
	}
	switch sub {
	case "mine":
		list, err := api.ListMyDonations(ctx)
		if err != nil {
			return err
		}
		printDonations(list)
	case "available":
		list, err := api.ListAvailableDonations(ctx)
		if err != nil {
			return err
		}
		printDonations(list)
	case "expiring":
		list, err := api.ListExpiringDonations(ctx)
		if err != nil {
			return err
		}
		printDonations(list)
	case "create":
		return createDonation(ctx, api, args[1:])
	case "cancel":
		if len(args) < 2 {
			return fmt.Errorf("usage: donations cancel <id>")
		}
		d, err := api.CancelDonation(ctx, args[1])
		if err != nil {
			return err
		}
		fmt.Printf("donation %s is now %s\n", d.ID, d.Status)
	default:
		return fmt.Errorf("unknown donations subcommand %q", sub)
	}
	return nil
}

func createDonation(ctx context.Context, api *client.Client, args []string) error {
	fs := flag.NewFlagSet("donations create", flag.ExitOnError)
	in := client.DonationInput{}
	var expiry string
	fs.StringVar(&in.FoodType, "food-type", "", "food category")
	fs.StringVar(&in.FoodName, "food-name", "", "food name")
	fs.StringVar(&in.Quantity, "quantity", "", "quantity")
	fs.StringVar(&in.QuantityUnit, "unit", "", "quantity unit")
	fs.StringVar(&expiry, "expiry", "", "expiry date (YYYY-MM-DD)")
	fs.StringVar(&in.PickupAddress, "pickup", "", "pickup address")
	fs.StringVar(&in.ContactPhone, "phone", "", "contact phone")
	fs.BoolVar(&in.RefrigerationRequired, "refrigerated", false, "requires refrigeration")
	fs.StringVar(&in.Notes, "notes", "", "notes")
	fs.Parse(args)

	if expiry != "" {
		parsed, err := time.Parse("2006-01-02", expiry)
		if err != nil {
			return fmt.Errorf("parse expiry: %w", err)
		}
		in.ExpiryDate = parsed
	}

	d, err := api.CreateDonation(ctx, in)
	if err != nil {
		return err
	}
	fmt.Printf("created donation %s\n", d.ID)
	return nil
}

func request(ctx context.Context, api *client.Client, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: request <donation-id>")
	}
	req, err := api.SubmitRequest(ctx, args[0])
	if err != nil {
		return err
	}
	fmt.Printf("request %s submitted, status %s\n", req.ID, req.Status)
	return nil
}

func listRequests(ctx context.Context, api *client.Client) error {
	list, err := api.OwnRequests(ctx)
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tDONATION\tSTATUS\tCREATED")
	for _, r := range list {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", r.ID, r.DonationID, r.Status, r.CreatedAt.Format(time.RFC3339))
	}
	return w.Flush()
}

func watch(ctx context.Context, api *client.Client) error {
	fmt.Println("watching for approvals, ctrl-c to stop")
	err := api.Watch(ctx, client.NotifierFunc(func(req client.DonationRequest) {
		fmt.Printf("request %s for donation %s was APPROVED\n", req.ID, req.DonationID)
	}))
	if ctx.Err() != nil {
		return nil
	}
	return err
}

func admin(ctx context.Context, api *client.Client, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: admin <login|pending|approve|reject>")
	}
	switch args[0] {
	case "login":
		fs := flag.NewFlagSet("admin login", flag.ExitOnError)
		username := fs.String("username", "admin", "admin username")
		password := fs.String("password", "", "admin password")
		fs.Parse(args[1:])
		if err := api.AdminLogin(ctx, *username, *password); err != nil {
			return err
		}
		fmt.Println("admin session established")
	case "pending":
		list, err := api.AdminListPending(ctx)
		if err != nil {
			return err
		}
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "REQUEST\tORGANIZATION\tFOOD\tQUANTITY")
		for _, p := range list {
			food, qty := "-", "-"
			if p.Donation != nil {
				food = p.Donation.FoodName
				qty = p.Donation.Quantity + " " + p.Donation.QuantityUnit
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", p.Request.ID, p.OrganizationName, food, qty)
		}
		return w.Flush()
	case "approve", "reject":
		fs := flag.NewFlagSet("admin decide", flag.ExitOnError)
		notes := fs.String("notes", "", "decision notes")
		fs.Parse(args[1:])
		if fs.NArg() < 1 {
			return fmt.Errorf("usage: admin %s <request-id>", args[0])
		}
		decision := client.DecisionApprove
		if args[0] == "reject" {
			decision = client.DecisionReject
		}
		req, err := api.AdminDecide(ctx, fs.Arg(0), decision, *notes)
		if err != nil {
			return err
		}
		fmt.Printf("request %s is now %s\n", req.ID, req.Status)
	default:
		return fmt.Errorf("unknown admin subcommand %q", args[0])
	}
	return nil
}

func printDonations(list []client.Donation) {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tFOOD\tQUANTITY\tSTATUS\tEXPIRES")
	for _, d := range list {
		fmt.Fprintf(w, "%s\t%s\t%s %s\t%s\t%s\n",
			d.ID, d.FoodName, d.Quantity, d.QuantityUnit, d.Status, d.ExpiryDate.Format("2006-01-02"))
	}
	w.Flush()
}

type stdinConfirmer struct{}

func (stdinConfirmer) Confirm(prompt string) bool {
	fmt.Printf("%s [y/N] ", prompt)
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func usage() {
	fmt.Fprintln(os.Stderr, `usage: foodbridge-cli [-url URL] [-yes] <command>

commands:
  register      create an organization account
  login         start an organization session
  logout        end the current session
  profile       show or update the organization profile
  donations     mine | available | expiring | create | cancel
  request       ask to collect a donation
  requests      list your donation requests
  watch         poll for approval notifications
  admin         login | pending | approve | reject`)
}

func fatal(err error) {
	fmt.Fprintln(os.Stderr, "error:", err)
	os.Exit(1)
}
