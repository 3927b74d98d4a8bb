package template

// The builtin catalog holds the stock templates shipped with the service,
// keyed by app then event type. Apps can override any of them (or add new
// event types) through the template deploy endpoint.

func mcpfactoryLayout(content string) string {
	return `
    <div style="font-family: system-ui, -apple-system, sans-serif; max-width: 600px; margin: 0 auto; padding: 40px 20px;">
      <img src="https://mcpfactory.org/logo-title.jpg" alt="MCP Factory" style="width: 180px; margin-bottom: 30px;" />
      ` + content + `
      <p style="color: #888; font-size: 14px; margin-top: 40px; padding-top: 20px; border-top: 1px solid #eee;">
        MCP Factory - The DFY, BYOK MCP Platform
      </p>
    </div>
  `
}

func genericLayout(content string) string {
	return `
    <div style="font-family: system-ui, -apple-system, sans-serif; max-width: 600px; margin: 0 auto; padding: 40px 20px;">
      ` + content + `
    </div>
  `
}

// builtinCatalog maps appID -> eventType -> template definition.
var builtinCatalog = map[string]map[string]Definition{
	"mcpfactory": {
		"waitlist": {
			Subject: "Welcome to the MCP Factory Waitlist!",
			HTMLBody: mcpfactoryLayout(`
      <h1 style="color: #1a1a1a; font-size: 24px; margin-bottom: 20px;">You're on the list!</h1>
      <p style="color: #4a4a4a; font-size: 16px; line-height: 1.6; margin-bottom: 20px;">
        Thanks for joining the MCP Factory waitlist. We'll notify you as soon as we're ready to launch.
      </p>
      <p style="color: #4a4a4a; font-size: 16px; line-height: 1.6; margin-bottom: 20px;">
        In the meantime, you can:
      </p>
      <ul style="color: #4a4a4a; font-size: 16px; line-height: 1.8; margin-bottom: 30px;">
        <li><a href="https://docs.mcpfactory.org" style="color: #6366f1;">Read the documentation</a></li>
        <li><a href="https://github.com/shamanic-technologies/mcpfactory" style="color: #6366f1;">Star us on GitHub</a></li>
      </ul>
    `),
			TextBody: `You're on the list!

Thanks for joining the MCP Factory waitlist. We'll notify you as soon as we're ready to launch.

In the meantime, you can:
- Read the documentation: https://docs.mcpfactory.org
- Star us on GitHub: https://github.com/shamanic-technologies/mcpfactory

MCP Factory - The DFY, BYOK MCP Platform`,
		},
		"welcome": {
			Subject: "Welcome to MCP Factory!",
			HTMLBody: mcpfactoryLayout(`
      <h1 style="color: #1a1a1a; font-size: 24px; margin-bottom: 20px;">Welcome aboard!</h1>
      <p style="color: #4a4a4a; font-size: 16px; line-height: 1.6; margin-bottom: 20px;">
        Your MCP Factory account is ready. You can now create campaigns, find leads, and automate your outreach.
      </p>
      <p style="color: #4a4a4a; font-size: 16px; line-height: 1.6; margin-bottom: 20px;">
        Get started:
      </p>
      <ul style="color: #4a4a4a; font-size: 16px; line-height: 1.8; margin-bottom: 30px;">
        <li><a href="https://app.mcpfactory.org" style="color: #6366f1;">Open your dashboard</a></li>
        <li><a href="https://docs.mcpfactory.org" style="color: #6366f1;">Read the documentation</a></li>
      </ul>
    `),
			TextBody: `Welcome aboard!

Your MCP Factory account is ready. You can now create campaigns, find leads, and automate your outreach.

Get started:
- Open your dashboard: https://app.mcpfactory.org
- Read the documentation: https://docs.mcpfactory.org

MCP Factory - The DFY, BYOK MCP Platform`,
		},
		"signup_notification": {
			Subject:  "New signup: {{email}}",
			HTMLBody: `<p>New user signed up: <strong>{{email}}</strong> at {{timestamp}}</p>`,
			TextBody: `New user signed up: {{email}} at {{timestamp}}`,
		},
		"signin_notification": {
			Subject:  "Sign-in: {{email}}",
			HTMLBody: `<p>User signed in: <strong>{{email}}</strong> at {{timestamp}}</p>`,
			TextBody: `User signed in: {{email}} at {{timestamp}}`,
		},
		"user_active": {
			Subject:  "User active: {{email}}",
			HTMLBody: `<p>User is back: <strong>{{email}}</strong> at {{timestamp}}</p>`,
			TextBody: `User is back: {{email}} at {{timestamp}}`,
		},
		"campaign_created": {
			Subject: "Campaign created: {{campaignName}}",
			HTMLBody: mcpfactoryLayout(`
      <h1 style="color: #1a1a1a; font-size: 24px; margin-bottom: 20px;">Campaign created</h1>
      <p style="color: #4a4a4a; font-size: 16px; line-height: 1.6; margin-bottom: 20px;">
        Your campaign <strong>{{campaignName}}</strong> has been created and is now live.
      </p>
      <p style="color: #4a4a4a; font-size: 16px; line-height: 1.6; margin-bottom: 20px;">
        <a href="https://dashboard.mcpfactory.org" style="color: #6366f1;">View in dashboard</a>
      </p>
    `),
			TextBody: `Campaign created: {{campaignName}}

Your campaign "{{campaignName}}" has been created and is now live.

View in dashboard: https://dashboard.mcpfactory.org

MCP Factory - The DFY, BYOK MCP Platform`,
		},
		"campaign_stopped": {
			Subject: "Campaign stopped: {{campaignName}}",
			HTMLBody: mcpfactoryLayout(`
      <h1 style="color: #1a1a1a; font-size: 24px; margin-bottom: 20px;">Campaign stopped</h1>
      <p style="color: #4a4a4a; font-size: 16px; line-height: 1.6; margin-bottom: 20px;">
        Your campaign <strong>{{campaignName}}</strong> has been stopped.
      </p>
      <p style="color: #4a4a4a; font-size: 16px; line-height: 1.6; margin-bottom: 20px;">
        You can resume it at any time from your dashboard.
      </p>
      <p style="color: #4a4a4a; font-size: 16px; line-height: 1.6; margin-bottom: 20px;">
        <a href="https://app.mcpfactory.org" style="color: #6366f1;">View in dashboard</a>
      </p>
    `),
			TextBody: `Campaign stopped: {{campaignName}}

Your campaign "{{campaignName}}" has been stopped. You can resume it at any time from your dashboard.

View in dashboard: https://app.mcpfactory.org

MCP Factory - The DFY, BYOK MCP Platform`,
		},
	},

	"generic": {
		"webinar_welcome": {
			Subject: "You're registered for {{productName}}!",
			HTMLBody: genericLayout(`
      <h1 style="color: #1a1a1a; font-size: 24px; margin-bottom: 20px;">You're in!</h1>
      <p style="color: #4a4a4a; font-size: 16px; line-height: 1.6; margin-bottom: 20px;">
        Your registration for <strong>{{productName}}</strong> is confirmed.
      </p>
      <p style="color: #4a4a4a; font-size: 16px; line-height: 1.6;">Date: <strong>{{eventDate}}</strong></p>
      <p style="color: #4a4a4a; font-size: 16px; line-height: 1.6; margin-top: 20px;">
        We'll send you reminders as the event approaches. Stay tuned!
      </p>
    `),
			TextBody: `You're in!

Your registration for {{productName}} is confirmed.
Date: {{eventDate}}

We'll send you reminders as the event approaches. Stay tuned!`,
		},
		"j_minus_3": {
			Subject: "3 days to go: {{productName}}",
			HTMLBody: genericLayout(`
      <h1 style="color: #1a1a1a; font-size: 24px; margin-bottom: 20px;">3 days to go!</h1>
      <p style="color: #4a4a4a; font-size: 16px; line-height: 1.6; margin-bottom: 20px;">
        <strong>{{productName}}</strong> is coming up in 3 days ({{eventDate}}).
      </p>
      <p style="color: #4a4a4a; font-size: 16px; line-height: 1.6;">
        Block the time in your calendar so you don't miss it.
      </p>
    `),
			TextBody: `3 days to go!

{{productName}} is coming up in 3 days ({{eventDate}}).

Block the time in your calendar so you don't miss it.`,
		},
		"j_minus_2": {
			Subject: "2 days to go: {{productName}}",
			HTMLBody: genericLayout(`
      <h1 style="color: #1a1a1a; font-size: 24px; margin-bottom: 20px;">2 days to go!</h1>
      <p style="color: #4a4a4a; font-size: 16px; line-height: 1.6; margin-bottom: 20px;">
        <strong>{{productName}}</strong> is coming up in 2 days ({{eventDate}}).
      </p>
      <p style="color: #4a4a4a; font-size: 16px; line-height: 1.6;">
        See you there!
      </p>
    `),
			TextBody: `2 days to go!

{{productName}} is coming up in 2 days ({{eventDate}}).

See you there!`,
		},
		"j_minus_1": {
			Subject: "Tomorrow: {{productName}}",
			HTMLBody: genericLayout(`
      <h1 style="color: #1a1a1a; font-size: 24px; margin-bottom: 20px;">It's tomorrow!</h1>
      <p style="color: #4a4a4a; font-size: 16px; line-height: 1.6; margin-bottom: 20px;">
        <strong>{{productName}}</strong> is tomorrow ({{eventDate}}).
      </p>
      <p style="color: #4a4a4a; font-size: 16px; line-height: 1.6;">
        We can't wait to see you. Make sure everything is set!
      </p>
    `),
			TextBody: `It's tomorrow!

{{productName}} is tomorrow ({{eventDate}}).

We can't wait to see you. Make sure everything is set!`,
		},
		"j_day": {
			Subject: "Today: {{productName}}",
			HTMLBody: genericLayout(`
      <h1 style="color: #1a1a1a; font-size: 24px; margin-bottom: 20px;">It's today!</h1>
      <p style="color: #4a4a4a; font-size: 16px; line-height: 1.6; margin-bottom: 20px;">
        <strong>{{productName}}</strong> is happening today ({{eventDate}}).
      </p>
      <p style="color: #4a4a4a; font-size: 16px; line-height: 1.6;">
        Join on time, we start sharp.
      </p>
    `),
			TextBody: `It's today!

{{productName}} is happening today ({{eventDate}}).

Join on time, we start sharp.`,
		},
	},
}

// Builtin returns the stock template for (appID, eventType).
func Builtin(appID, eventType string) (Definition, bool) {
	app, ok := builtinCatalog[appID]
	if !ok {
		return Definition{}, false
	}
	def, ok := app[eventType]
	return def, ok
}
