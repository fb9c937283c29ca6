// ABOUTME: Message catalog for mailbot replies
// ABOUTME: All user-facing wording lives here, parameterized on the configured domains

package bot

// catalog builds the bot's user-facing messages. Replies are markdown;
// the transport renders them into the chat platform's rich format.
type catalog struct {
	domain       string // admin/webmail host, e.g. box.example.com
	emailDomain  string // domain new addresses live under
	adminContact string
}

func (c catalog) greeting() []string {
	return []string{
		"Hi there! I'm your Mail Bot and I'm here to help! 😊 " +
			"Message me and I can help you with the following:\n" +
			" - I can **create** your @" + c.emailDomain + " email account.\n" +
			" - If you **forget** your email password, I can help you **reset** it.\n" +
			" - I can give you **information** about how to set up your emails and how to " +
			"access our private cloud.\n",
	}
}

func (c catalog) info() []string {
	return []string{
		"So here is some information on how to get started with your email account:",
		"📬 You can access your emails via our webmail at https://" + c.domain + "/mail/",
		"I recommend you use an email client on your computer and/or phone. On iOS and Mac " +
			"you can open https://" + c.domain + "/mailinabox.mobileconfig and follow the " +
			"instructions. Your _username_ is your full email address. Your _password_ is the " +
			"one I sent you when I set up your email account, unless you changed it.",
		"For other devices, these are the settings you will need to manually configure " +
			"your email client:",
		"> **Protocol/Method:** IMAP\n" +
			"> **Mail server:** " + c.domain + "\n" +
			"> **IMAP Port:** 993\n" +
			"> **IMAP Security:** SSL or TLS\n" +
			"> **SMTP Port:** 587\n" +
			"> **SMTP Security:** STARTTLS (\"always\" or \"required\", if prompted)\n" +
			"> **Username:** _Your full email address_\n" +
			"> **Password:** _The password I sent you, unless you changed it._\n",
		"For more details go to https://" + c.domain + "/admin and go to Mail > Instructions.",
		"🚀 You also have access to our private cloud, which you can use for contacts, " +
			"calendars and file sharing/storage.",
		"You can access it at https://" + c.domain + "/cloud. Your login is the same as " +
			"for your email account.",
		"❓ If you have any issues I can't help you with, contact " + c.adminContact + ".",
	}
}

func (c catalog) alreadyHaveAccount(email string) []string {
	return []string{
		"You already have an email address: `" + email + "`",
		"I can **reset** your password for you if you have forgotten it.",
		"If you want to delete your account or need an alias, please contact " + c.adminContact + ".",
	}
}

func (c catalog) noAccountYet() []string {
	return []string{
		"It looks like you don't have an email account yet. " +
			"Ask me to create one for you, then I can reset your password.",
	}
}

func (c catalog) createIntro() []string {
	return []string{
		"Okay! I'm about to create a new email account for you.",
		"Are you ready?",
	}
}

func (c catalog) createDeclined() []string {
	return []string{"Okay, I won't create a new email account."}
}

func (c catalog) nameFormat() []string {
	return []string{
		"Great! Let's get started! 😃",
		"Your email address will have this format: `<first name>.<last name>@" + c.emailDomain + "`",
		"What is your first name?",
	}
}

// nameFormatRetry re-enters name collection without the opening cheer.
func (c catalog) nameFormatRetry() []string {
	return []string{
		"Okay!",
		"Your email address will have this format: `<first name>.<last name>@" + c.emailDomain + "`",
		"What is your first name?",
	}
}

func (c catalog) askLastName() []string {
	return []string{"Great! What about your last name?"}
}

func (c catalog) addressTaken(email string) []string {
	return []string{
		"I'm sorry, but `" + email + "` is already taken! 😕",
		"Do you want to try again?",
	}
}

func (c catalog) confirmAddress(email string) []string {
	return []string{
		"I'm about to create `" + email + "` for you!",
		"Is that correct?",
	}
}

func (c catalog) retryOrAbandon() []string {
	return []string{"Do you want to try that again?"}
}

func (c catalog) abandoned() []string {
	return []string{"Later then.. You know where to find me! 😉"}
}

func (c catalog) accountCreated(serverMsg, email, password string) []string {
	return append([]string{
		"Perfect! 😊 I'll do that right now!",
		"System says: ```" + serverMsg + "```",
		"All done! 😎",
		"Your new email address is: `" + email + "`",
		"Your password is: `" + password + "`",
		"You can change your password at https://" + c.domain + "/mail/",
	}, c.info()...)
}

func (c catalog) resetIntro(email string) []string {
	return []string{
		"I'm about to reset the password for `" + email + "`!",
		"Are you sure about this?",
	}
}

func (c catalog) resetDeclined() []string {
	return []string{"Okay, see you later. 😉"}
}

func (c catalog) passwordReset(serverMsg, password string) []string {
	return []string{
		"Okay, I'm on it! 🚀",
		"System says: ```" + serverMsg + "```",
		"All done! 😎",
		"Your new password is: `" + password + "`",
		"You can change your password at https://" + c.domain + "/mail/",
	}
}

func (c catalog) provisioningFailed() []string {
	return []string{
		"Something went wrong! 😱",
		"Please contact " + c.adminContact + ".",
	}
}

func (c catalog) storageFailed() []string {
	return []string{
		"Something went wrong with my storage! 😱",
		"Please contact " + c.adminContact + ".",
	}
}

func (c catalog) didNotGetThat(question string) []string {
	return []string{
		"I didn't quite get that...",
		question,
	}
}

func (c catalog) givingUp() []string {
	return []string{
		"We don't seem to be getting anywhere, so I'll stop here. " +
			"Message me again whenever you're ready.",
	}
}
