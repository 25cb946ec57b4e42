// chatctl is a command line client for the chat server.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/moredevelopers26/chattest/clients/go/chatclient"
	"github.com/moredevelopers26/chattest/internal/handlers"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	client := chatclient.NewClient(os.Getenv("CHAT_URL"))
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	cmd := os.Args[1]

	switch cmd {
	case "health":
		resp, err := client.Health(ctx)
		exitOnError(err)
		printJSON(resp)

	case "login":
		need(3, "chatctl login <email>")
		u, err := client.Login(ctx, os.Args[2])
		exitOnError(err)
		fmt.Printf("Logged in as %s (%s)\n", u.Name, u.ID)

	case "signup":
		need(4, "chatctl signup <name> <email>")
		u, err := client.Signup(ctx, os.Args[2], os.Args[3])
		exitOnError(err)
		fmt.Printf("Registered as %s (%s)\n", u.Name, u.ID)

	case "logout":
		exitOnError(client.Logout(ctx))

	case "chats":
		chats, err := client.Chats(ctx)
		exitOnError(err)
		for _, c := range chats {
			unread := ""
			if c.UnreadCount > 0 {
				unread = fmt.Sprintf(" [%d]", c.UnreadCount)
			}
			fmt.Printf("  %-28s %s%s  %s\n", c.ID, c.Name, unread, c.LastMessage)
		}

	case "read":
		roomID := "global"
		if len(os.Args) > 2 {
			roomID = os.Args[2]
		}
		msgs, err := client.Messages(ctx, roomID, "")
		exitOnError(err)
		for _, m := range msgs {
			ts := time.UnixMilli(m.Timestamp).Format("2006-01-02 15:04:05")
			fmt.Printf("[%s] %s: %s\n", ts, m.SenderName, preview(m.Type, m.Text))
		}
		exitOnError(client.MarkRead(ctx, roomID))

	case "post":
		need(3, "chatctl post <message> [room]")
		roomID := "global"
		if len(os.Args) > 3 {
			roomID = os.Args[3]
		}
		m, err := client.Send(ctx, roomID, os.Args[2], "")
		exitOnError(err)
		fmt.Printf("Posted: %s\n", m.ID)

	case "search":
		need(4, "chatctl search <room> <query>")
		msgs, err := client.Messages(ctx, os.Args[2], os.Args[3])
		exitOnError(err)
		for _, m := range msgs {
			fmt.Printf("%s: %s\n", m.SenderName, preview(m.Type, m.Text))
		}

	case "users":
		users, err := client.Users(ctx)
		exitOnError(err)
		for _, u := range users {
			fmt.Printf("  %-12s %-20s %s\n", u.ID, u.Name, u.Status)
		}

	case "vault":
		items, err := client.Vault(ctx)
		exitOnError(err)
		printJSON(items)

	case "calls":
		calls, err := client.Calls(ctx)
		exitOnError(err)
		printJSON(calls)

	case "watch":
		roomID := ""
		if len(os.Args) > 2 {
			roomID = os.Args[2]
		}
		err := client.Watch(ctx, roomID, func(ev handlers.Event) bool {
			if ev.Notification != nil {
				fmt.Printf("%s: %s\n", ev.Notification.Title, ev.Notification.Body)
			}
			return true
		})
		if err != nil && ctx.Err() == nil {
			exitOnError(err)
		}

	case "help", "--help", "-h":
		usage()

	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", cmd)
		usage()
		os.Exit(1)
	}
}

func usage() {
	fmt.Println(`chatctl - chat server command line client

Usage: chatctl <command> [options]

Commands:
  login <email>           Sign in as an existing user
  signup <name> <email>   Register and sign in
  logout                  End the session
  chats                   List visible chats
  read [room]             Read a room and mark it read
  post <message> [room]   Post a message
  search <room> <query>   Search a room
  users                   List users
  vault                   List saved items
  calls                   Show the call log
  watch [room]            Print notifications as they arrive
  health                  Check server health

Environment:
  CHAT_URL      Server URL (default: http://localhost:8080)`)
}

func need(n int, usage string) {
	if len(os.Args) < n {
		fmt.Fprintln(os.Stderr, "Usage:", usage)
		os.Exit(1)
	}
}

func preview(typ, text string) string {
	if typ == "text" || typ == "ai" {
		return text
	}
	return "<" + typ + ">"
}

func exitOnError(err error) {
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func printJSON(v interface{}) {
	data, _ := json.MarshalIndent(v, "", "  ")
	fmt.Println(string(data))
}
