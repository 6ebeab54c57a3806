package repository

// Factory describes access to different domain repositories.
type Factory interface {
	Wallets() WalletRepository
	Tokens() TokenRepository
	GiftCodes() GiftCodeRepository
	Withdrawals() WithdrawalRepository
	Settings() SettingRepository
}
